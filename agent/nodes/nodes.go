// Package nodes implements the individual pipeline steps. Each step is a
// Func that takes the request context, mutates a copy-owned flow context, and
// returns it. Steps that load supporting data degrade gracefully; steps whose
// output downstream business logic depends on return errors instead.
package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
	gatex "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/gate"
	intentx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/intent"
)

// Func is the signature every pipeline step implements.
type Func func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error)

// Deps are the external collaborators the steps call out to.
type Deps struct {
	Products  contractx.ProductFetcher
	Behavior  contractx.BehaviorFetcher
	Retriever contractx.Retriever
	Writer    contractx.CopyWriter
}

// Tuning knobs shared by the steps. Values mirror production defaults.
const (
	behaviorLogLimit = 50
	retrieveTopK     = 3

	apologyCopy = "Thanks for looking around! Let me know if I can help with anything about this product."
)

// NewRegistry wires the step implementations to their task names. The
// registry is the single source of truth for which tasks exist.
func NewRegistry(deps Deps) map[contractx.TaskName]Func {
	return map[contractx.TaskName]Func{
		contractx.TaskFetchProduct:         FetchProduct(deps.Products),
		contractx.TaskFetchBehaviorSummary: FetchBehaviorSummary(deps.Behavior),
		contractx.TaskClassifyIntent:       ClassifyIntent(),
		contractx.TaskAntiDisturbCheck:     AntiDisturbCheck(),
		contractx.TaskRetrieveContext:      RetrieveContext(deps.Retriever),
		contractx.TaskGeneratePrimaryCopy:  GenerateCopy(deps.Writer, false),
		contractx.TaskGenerateFollowupCopy: GenerateCopy(deps.Writer, true),
	}
}

// FetchProduct loads the product record for the context SKU. A missing or
// unknown SKU is an error: nothing downstream can work without a product.
func FetchProduct(products contractx.ProductFetcher) Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		if fc.Product != nil {
			return fc, nil
		}
		if fc.SKU == "" {
			return nil, fmt.Errorf("%w: sku is required to fetch a product", contractx.ErrValidation)
		}
		product, err := products.FetchBySKU(ctx, fc.SKU)
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", fc.SKU, err)
		}
		fc.Product = product
		log.Debug().Str("sku", fc.SKU).Str("name", product.Name).Msg("nodes: product loaded")
		return fc, nil
	}
}

// FetchBehaviorSummary aggregates the user's recent behavior. Storage
// failures degrade to an empty summary so the pipeline can continue with a
// conservative classification.
func FetchBehaviorSummary(behavior contractx.BehaviorFetcher) Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		if fc.BehaviorSummary != nil {
			return fc, nil
		}
		if fc.UserID == "" || fc.SKU == "" {
			return nil, fmt.Errorf("%w: user id and sku are required to summarize behavior", contractx.ErrValidation)
		}
		summary, err := behavior.Summary(ctx, fc.UserID, fc.SKU, behaviorLogLimit)
		if err != nil {
			log.Warn().Err(err).
				Str("user_id", fc.UserID).
				Str("sku", fc.SKU).
				Msg("nodes: behavior summary unavailable, continuing with empty summary")
			summary = contractx.BehaviorSummary{}
		}
		fc.BehaviorSummary = &summary
		return fc, nil
	}
}

// ClassifyIntent runs the rule cascade over the behavior summary. A missing
// summary is a hard precondition failure; an internal panic degrades to a
// low-intent fallback because mis-serving one request is better than crashing
// the worker.
func ClassifyIntent() Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		if fc.BehaviorSummary == nil {
			return nil, contractx.ErrMissingBehaviorSummary
		}

		result := safeClassify(*fc.BehaviorSummary)
		fc.IntentLevel = result.Level
		fc.Signals.IntentReason = result.Reason

		log.Info().
			Str("user_id", fc.UserID).
			Str("sku", fc.SKU).
			Str("intent_level", string(result.Level)).
			Str("reason", result.Reason).
			Msg("nodes: intent classified")
		return fc, nil
	}
}

func safeClassify(summary contractx.BehaviorSummary) (result contractx.IntentResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("nodes: classifier panicked, falling back to low intent")
			result = contractx.IntentResult{
				Level:  contractx.IntentLow,
				Reason: "classification failed, defaulting to low intent",
			}
		}
	}()
	return intentx.Classify(summary)
}

// AntiDisturbCheck applies the outreach gate and records both polarity
// signals so downstream consumers can tell "blocked" from "never checked".
func AntiDisturbCheck() Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		decision := gatex.Allow(fc.IntentLevel, fc.Signals.ForceAllow)

		allowed := decision.Allowed
		blocked := !decision.Allowed
		fc.Signals.OutreachAllowed = &allowed
		fc.Signals.OutreachBlocked = &blocked

		log.Info().
			Str("user_id", fc.UserID).
			Str("intent_level", string(fc.IntentLevel)).
			Bool("allowed", decision.Allowed).
			Str("reason", decision.Reason).
			Msg("nodes: anti-disturb decision")
		return fc, nil
	}
}

// RetrieveContext pulls supporting product snippets from the vector store.
// Retrieval is best-effort: on failure the copy is generated without extra
// context rather than failing the run.
func RetrieveContext(retriever contractx.Retriever) Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		query := fc.SKU
		if fc.Product != nil && fc.Product.Name != "" {
			query = fc.Product.Name
		}
		chunks, err := retriever.Retrieve(ctx, query, retrieveTopK)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("nodes: retrieval failed, continuing without context")
			chunks = nil
		}
		fc.RAGChunks = chunks
		return fc, nil
	}
}

// GenerateCopy produces one assistant message via the copy writer. followup
// selects the follow-up variant. Writer failures append a safe generic
// message instead of propagating: the user-facing path never surfaces an
// internal error.
func GenerateCopy(writer contractx.CopyWriter, followup bool) Func {
	return func(ctx context.Context, fc *flowx.Context) (*flowx.Context, error) {
		req := contractx.CopyRequest{
			Product:      fc.Product,
			IntentLevel:  fc.IntentLevel,
			IntentReason: fc.Signals.IntentReason,
			RAGChunks:    fc.RAGChunks,
			Style:        fc.Signals.CopyStyle,
		}

		var (
			copyText string
			err      error
		)
		if followup {
			copyText, err = writer.Followup(ctx, req)
		} else {
			copyText, err = writer.Primary(ctx, req)
		}
		if err != nil {
			log.Error().Err(err).
				Str("user_id", fc.UserID).
				Bool("followup", followup).
				Msg("nodes: copy generation failed, using fallback copy")
			copyText = apologyCopy
		}

		fc.AppendMessage(contractx.RoleAssistant, copyText)
		return fc, nil
	}
}
