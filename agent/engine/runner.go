// Package engine executes task plans against the node registry. It offers
// two drivers: a Runner that walks an explicit task list under a failure
// policy, and a compiled Graph for the fixed standard pipeline.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	nodex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/nodes"
)

// Runner executes explicit task plans step by step.
type Runner struct {
	registry map[contractx.TaskName]nodex.Func
	policy   Policy
}

func NewRunner(registry map[contractx.TaskName]nodex.Func, policy Policy) *Runner {
	return &Runner{registry: registry, policy: policy}
}

// RunNode executes a single step against a snapshot-protected context. The
// step receives the live context; if it returns a nil context without an
// error, or fails under a non-halting policy, the pre-call snapshot is
// restored so a broken step can never corrupt the run state.
func (r *Runner) RunNode(
	ctx context.Context,
	task contractx.TaskName,
	fc *flowx.Context,
) (*flowx.Context, error) {
	fn, ok := r.registry[task]
	if !ok {
		return fc, fmt.Errorf("%w: %s", contractx.ErrUnknownTask, task)
	}

	snapshot := fc.Clone()
	out, err := fn(ctx, fc)
	if err != nil {
		switch r.policy {
		case PolicyHalt:
			return nil, fmt.Errorf("run %s: %w", task, err)
		default:
			log.Warn().Err(err).
				Str("task", string(task)).
				Str("policy", r.policy.String()).
				Msg("engine: step failed, restoring snapshot")
			return snapshot, err
		}
	}
	if out == nil {
		log.Warn().Str("task", string(task)).Msg("engine: step returned nil context, restoring snapshot")
		return snapshot, nil
	}
	return out, nil
}

// RunPlan executes the tasks in order under the runner's policy. Halt
// propagates the first failure, revert stops at the failure returning the
// last good context, skip drops the failure and keeps going. An unknown task
// is an error under halt and a logged skip otherwise.
func (r *Runner) RunPlan(
	ctx context.Context,
	plan []contractx.TaskName,
	fc *flowx.Context,
) (*flowx.Context, error) {
	for _, task := range plan {
		if _, ok := r.registry[task]; !ok {
			if r.policy == PolicyHalt {
				return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTask, task)
			}
			log.Warn().Str("task", string(task)).Msg("engine: skipping unknown task")
			continue
		}

		out, err := r.RunNode(ctx, task, fc)
		if err != nil {
			switch r.policy {
			case PolicyHalt:
				return nil, err
			case PolicyRevert:
				return out, nil
			case PolicySkip:
				fc = out
				continue
			}
		}
		fc = out
	}
	return fc, nil
}
