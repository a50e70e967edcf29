package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	nodex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/nodes"
	plannerx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/planner"
)

// Flow is the request-facing entry point. An empty plan runs the compiled
// standard pipeline; an explicit plan is repaired by the planner and walked
// task by task with failed steps skipped.
type Flow struct {
	registry map[contractx.TaskName]nodex.Func
	graph    *Graph
}

func NewFlow(ctx context.Context, deps nodex.Deps) (*Flow, error) {
	registry := nodex.NewRegistry(deps)
	graph, err := NewGraph(ctx, registry)
	if err != nil {
		return nil, fmt.Errorf("build standard pipeline: %w", err)
	}
	return &Flow{registry: registry, graph: graph}, nil
}

// Plan derives the remaining task list for a context without executing it.
func (f *Flow) Plan(fc *flowx.Context) []contractx.TaskName {
	return plannerx.Plan(fc)
}

// Run executes a request. plan may be nil for the standard pipeline. The
// returned context always reflects the furthest good state: a pipeline
// failure is logged and the input context is returned rather than an error,
// while a mandatory-step violation after the walk does surface as an error.
func (f *Flow) Run(
	ctx context.Context,
	fc *flowx.Context,
	plan []contractx.TaskName,
) (*flowx.Context, error) {
	if fc == nil {
		return nil, fmt.Errorf("%w: flow context is nil", contractx.ErrValidation)
	}

	if len(plan) == 0 {
		out, err := f.graph.Run(ctx, fc)
		if err != nil {
			log.Error().Err(err).
				Str("user_id", fc.UserID).
				Str("sku", fc.SKU).
				Msg("flow: standard pipeline failed, returning last good context")
			return fc, nil
		}
		return out, f.validateMandatory(out)
	}

	enforced := plannerx.Enforce(plan, fc)
	runner := NewRunner(f.registry, PolicySkip)

	for _, task := range enforced {
		if _, ok := f.registry[task]; !ok {
			log.Warn().Str("task", string(task)).Msg("flow: skipping unknown task")
			continue
		}
		out, err := runner.RunNode(ctx, task, fc)
		if err != nil {
			// RunNode already restored the snapshot; keep walking.
			fc = out
			continue
		}
		fc = out

		// Once the gate has blocked outreach, the remaining tasks would only
		// produce messages the user must not receive.
		if task == contractx.TaskAntiDisturbCheck && fc.Signals.Blocked() {
			log.Info().
				Str("user_id", fc.UserID).
				Str("intent_level", string(fc.IntentLevel)).
				Msg("flow: outreach blocked, stopping plan early")
			break
		}
	}

	return fc, f.validateMandatory(fc)
}

// validateMandatory checks that no business-critical step was silently lost:
// behavior data without a classification, or a classification without a gate
// decision, means the run cannot be trusted.
func (f *Flow) validateMandatory(fc *flowx.Context) error {
	if fc.UserID != "" && fc.SKU != "" && fc.BehaviorSummary != nil &&
		fc.IntentLevel == contractx.IntentUnset {
		return contractx.ErrMissingIntentLevel
	}
	if fc.IntentLevel != contractx.IntentUnset && fc.Signals.OutreachAllowed == nil {
		return contractx.ErrMissingGateResult
	}
	return nil
}
