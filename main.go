package main

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	enginex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/engine"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	nodex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/nodes"
	"github.com/tanpawarit/Shoply-Proactive-Sales-Assist/copywrite"
	configx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/pkg/config"
	_ "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/pkg/openrouter"
	ragx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/rag"
	behaviorstore "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/store/behavior"
	productstore "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/store/product"
)

type AppConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	UserID      string `envconfig:"DEMO_USER_ID" default:"user-001"`
	SKU         string `envconfig:"DEMO_SKU" default:"SKU001"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(appCfg.DatabaseDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("init chat model")
	}

	writer, err := copywrite.NewWriter(ctx, chatModel)
	if err != nil {
		log.Fatal().Err(err).Msg("init copy writer")
	}

	retriever := ragx.MustNewRetriever(*configx.MustNew[ragx.Config]("VECTOR"))

	flow, err := enginex.NewFlow(ctx, nodex.Deps{
		Products:  productstore.NewRepository(db),
		Behavior:  behaviorstore.NewRepository(db),
		Retriever: retriever,
		Writer:    writer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init flow")
	}

	fc := flowx.New(
		flowx.WithUserID(appCfg.UserID),
		flowx.WithSKU(appCfg.SKU),
	)

	out, err := flow.Run(ctx, fc, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("run pipeline")
	}

	evt := log.Info().
		Str("user_id", out.UserID).
		Str("sku", out.SKU).
		Str("intent_level", string(out.IntentLevel)).
		Bool("outreach_allowed", out.Signals.Allowed())
	if len(out.Messages) > 0 {
		evt = evt.Str("copy", out.Messages[len(out.Messages)-1].Content)
	}
	evt.Msg("pipeline finished")
}
