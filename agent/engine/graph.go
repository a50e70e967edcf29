package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	nodex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/nodes"
)

// Graph is the compiled standard pipeline: product, behavior, classify, gate,
// then a branch that ends blocked runs, generates directly for low intent, or
// retrieves context before generating for everyone else. Every node is
// wrapped so a failure restores the pre-node snapshot and the walk continues;
// the gate failing closed downstream keeps a degraded run safe.
type Graph struct {
	runner compose.Runnable[*flowx.Context, *flowx.Context]
}

// NewGraph compiles the standard pipeline over the given registry.
func NewGraph(ctx context.Context, registry map[contractx.TaskName]nodex.Func) (*Graph, error) {
	graph := compose.NewGraph[*flowx.Context, *flowx.Context]()

	if err := graph.AddLambdaNode("fetch_product",
		compose.InvokableLambda(revertOnError("fetch_product", registry[contractx.TaskFetchProduct])),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_product: %w", err)
	}

	if err := graph.AddLambdaNode("fetch_behavior",
		compose.InvokableLambda(revertOnError("fetch_behavior", registry[contractx.TaskFetchBehaviorSummary])),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_behavior: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(revertOnError("classify_intent", registry[contractx.TaskClassifyIntent])),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("anti_disturb_check",
		compose.InvokableLambda(revertOnError("anti_disturb_check", registry[contractx.TaskAntiDisturbCheck])),
	); err != nil {
		return nil, fmt.Errorf("add node anti_disturb_check: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_context",
		compose.InvokableLambda(revertOnError("retrieve_context", registry[contractx.TaskRetrieveContext])),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate_copy",
		compose.InvokableLambda(revertOnError("generate_copy", selectGenerator(registry))),
	); err != nil {
		return nil, fmt.Errorf("add node generate_copy: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *flowx.Context) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
			}
			switch {
			case !in.Signals.Allowed():
				return compose.END, nil
			case in.IntentLevel == contractx.IntentLow:
				// Reachable only under a gate override; generate without
				// spending a retrieval call on a low-intent user.
				return "generate_copy", nil
			default:
				return "retrieve_context", nil
			}
		},
		map[string]bool{
			compose.END:        true,
			"generate_copy":    true,
			"retrieve_context": true,
		},
	)
	if err := graph.AddBranch("anti_disturb_check", branch); err != nil {
		return nil, fmt.Errorf("add outreach branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "fetch_product"},
		{"fetch_product", "fetch_behavior"},
		{"fetch_behavior", "classify_intent"},
		{"classify_intent", "anti_disturb_check"},
		{"retrieve_context", "generate_copy"},
		{"generate_copy", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("sales_assist.standard_pipeline"))
	if err != nil {
		return nil, fmt.Errorf("compile standard pipeline: %w", err)
	}
	return &Graph{runner: runner}, nil
}

// Run executes the compiled pipeline on the given context.
func (g *Graph) Run(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
	if fc == nil {
		return nil, fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
	}
	out, err := g.runner.Invoke(ctx, fc)
	if err != nil {
		return nil, fmt.Errorf("invoke standard pipeline: %w", err)
	}
	return out, nil
}

// revertOnError keeps the graph walking past a failed node by restoring the
// pre-node snapshot. The gate fails closed on missing data, so a degraded
// walk can never produce outreach it should not.
func revertOnError(name string, fn nodex.Func) func(context.Context, *flowx.Context) (*flowx.Context, error) {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		if fc == nil {
			return nil, fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
		}
		snapshot := fc.Clone()
		out, err := fn(ctx, fc)
		if err != nil {
			log.Warn().Err(err).Str("node", name).Msg("engine: graph node failed, restoring snapshot")
			return snapshot, nil
		}
		if out == nil {
			log.Warn().Str("node", name).Msg("engine: graph node returned nil context, restoring snapshot")
			return snapshot, nil
		}
		return out, nil
	}
}

// selectGenerator picks the follow-up generator when the context asks for it,
// the primary generator otherwise.
func selectGenerator(registry map[contractx.TaskName]nodex.Func) nodex.Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		if fc.Signals.TaskType == "followup" {
			return registry[contractx.TaskGenerateFollowupCopy](ctx, fc)
		}
		return registry[contractx.TaskGeneratePrimaryCopy](ctx, fc)
	}
}
