package contract

import "context"

// ProductFetcher loads product records from storage. FetchBySKU returns
// ErrProductNotFound when the SKU does not exist, which callers must treat
// differently from a transient storage failure.
type ProductFetcher interface {
	FetchBySKU(ctx context.Context, sku string) (*Product, error)
}

// BehaviorFetcher aggregates recent behavior logs into a summary. A returned
// error means the summary could not be built; callers fall back to an empty
// summary rather than failing the pipeline.
type BehaviorFetcher interface {
	Summary(ctx context.Context, userID, sku string, limit int) (BehaviorSummary, error)
}

// Retriever performs vector search for product context snippets. An error or
// unavailable backend yields an empty chunk list at the pipeline level.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}

// CopyWriter generates outreach copy. An error from either method makes the
// calling step append a generic apology message instead of propagating.
type CopyWriter interface {
	Primary(ctx context.Context, req CopyRequest) (string, error)
	Followup(ctx context.Context, req CopyRequest) (string, error)
}
