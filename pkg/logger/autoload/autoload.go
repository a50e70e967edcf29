// Package autoload configures the global logger from the environment when
// blank-imported. Import it once from main.
package autoload

import (
	configx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/pkg/config"
	logx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
