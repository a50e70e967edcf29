// Package planner derives the ordered task list for one pipeline run and
// repairs caller-supplied plans so business-critical steps cannot be skipped.
package planner

import (
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	intentx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/intent"
)

// Plan inspects the context and returns the tasks still needed to complete
// the run. It only schedules a step when its output is missing, so calling it
// on a finished context yields an empty plan and re-planning mid-run is safe.
func Plan(fc *flowx.Context) []contractx.TaskName {
	var tasks []contractx.TaskName

	if fc.Product == nil {
		tasks = append(tasks, contractx.TaskFetchProduct)
	}
	if fc.UserID != "" && fc.SKU != "" && fc.BehaviorSummary == nil {
		tasks = append(tasks, contractx.TaskFetchBehaviorSummary)
	}
	if fc.BehaviorSummary != nil && fc.IntentLevel == contractx.IntentUnset {
		tasks = append(tasks, contractx.TaskClassifyIntent)
	}

	// The gate only makes sense once there is intent data to judge, present
	// or imminent.
	gateEligible := fc.IntentLevel != contractx.IntentUnset || fc.BehaviorSummary != nil
	if gateEligible {
		tasks = append(tasks, contractx.TaskAntiDisturbCheck)
	}

	// For branch decisions before classification has run, estimate the level
	// from the summary the same way the classify step will.
	estLevel := fc.IntentLevel
	if estLevel == contractx.IntentUnset && fc.BehaviorSummary != nil {
		estLevel = intentx.Classify(*fc.BehaviorSummary).Level
	}

	if gateEligible && estLevel != contractx.IntentLow {
		tasks = append(tasks, contractx.TaskRetrieveContext)
	}
	if gateEligible && !fc.Signals.Blocked() &&
		(estLevel != contractx.IntentLow || fc.Signals.ForceGenerate) {
		if fc.Signals.TaskType == "followup" {
			tasks = append(tasks, contractx.TaskGenerateFollowupCopy)
		} else {
			tasks = append(tasks, contractx.TaskGeneratePrimaryCopy)
		}
	}

	log.Debug().
		Str("user_id", fc.UserID).
		Str("sku", fc.SKU).
		Interface("tasks", tasks).
		Msg("planner: derived plan")
	return tasks
}

// Enforce repairs a caller-supplied plan: the mandatory steps whose outputs
// the context is still missing are prepended in dependency order, then the
// caller's tasks follow in their original relative order. Duplicates keep
// their first occurrence. The input slice is never mutated.
func Enforce(plan []contractx.TaskName, fc *flowx.Context) []contractx.TaskName {
	var mandatory []contractx.TaskName

	if fc.Product == nil {
		mandatory = append(mandatory, contractx.TaskFetchProduct)
	}

	needBehavior := fc.UserID != "" && fc.SKU != "" && fc.BehaviorSummary == nil
	if needBehavior {
		mandatory = append(mandatory, contractx.TaskFetchBehaviorSummary)
	}

	// Classification is required once a summary exists or will exist by the
	// time the step runs.
	needClassify := fc.IntentLevel == contractx.IntentUnset &&
		(fc.BehaviorSummary != nil || needBehavior)
	if needClassify {
		mandatory = append(mandatory, contractx.TaskClassifyIntent)
	}

	// Same chain for the gate: once intent data is present or scheduled, the
	// gate must run before any outreach.
	if fc.IntentLevel != contractx.IntentUnset || fc.BehaviorSummary != nil || needClassify {
		mandatory = append(mandatory, contractx.TaskAntiDisturbCheck)
	}

	out := make([]contractx.TaskName, 0, len(mandatory)+len(plan))
	seen := make(map[contractx.TaskName]bool, len(mandatory)+len(plan))
	for _, t := range mandatory {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range plan {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	if len(out) != len(plan) {
		log.Debug().
			Interface("requested", plan).
			Interface("enforced", out).
			Msg("planner: repaired caller plan")
	}
	return out
}
