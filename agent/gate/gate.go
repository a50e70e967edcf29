// Package gate decides whether proactive outreach is permitted for a given
// intent level. It is the single choke point between classification and any
// user-visible message.
package gate

import (
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
)

// Decision is the gate outcome with the reason it was reached.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Allow applies the anti-disturb policy. forceAllow bypasses the policy
// entirely, which exists for operator-triggered outreach. Unknown or unset
// levels fail closed: when in doubt, do not contact the user.
func Allow(level contractx.IntentLevel, forceAllow bool) Decision {
	if forceAllow {
		return Decision{Allowed: true, Reason: "outreach forced by caller override"}
	}

	switch level {
	case contractx.IntentUnset:
		return Decision{Allowed: false, Reason: "intent has not been classified yet"}
	case contractx.IntentLow:
		return Decision{Allowed: false, Reason: "low intent, proactive contact would disturb the user"}
	case contractx.IntentHigh:
		return Decision{Allowed: true, Reason: "high intent, user is close to a purchase decision"}
	case contractx.IntentMedium:
		return Decision{Allowed: true, Reason: "medium intent, a helpful nudge is acceptable"}
	case contractx.IntentHesitating:
		return Decision{Allowed: true, Reason: "user is hesitating, targeted reassurance is appropriate"}
	default:
		log.Warn().Str("intent_level", string(level)).Msg("gate: unknown intent level, failing closed")
		return Decision{Allowed: false, Reason: "unknown intent level, failing closed"}
	}
}
