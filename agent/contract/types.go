package contract

// IntentLevel is a coarse estimate of purchase readiness derived from
// behavioral signals.
type IntentLevel string

const (
	IntentHigh       IntentLevel = "high"
	IntentMedium     IntentLevel = "medium"
	IntentLow        IntentLevel = "low"
	IntentHesitating IntentLevel = "hesitating"

	// IntentUnset means classification has not run yet.
	IntentUnset IntentLevel = ""
)

func (l IntentLevel) Valid() bool {
	switch l {
	case IntentHigh, IntentMedium, IntentLow, IntentHesitating:
		return true
	default:
		return false
	}
}

// TaskName identifies a pipeline step. The node registry is keyed by these
// constants so an unknown name cannot be introduced silently.
type TaskName string

const (
	TaskFetchProduct         TaskName = "fetch-product"
	TaskFetchBehaviorSummary TaskName = "fetch-behavior-summary"
	TaskClassifyIntent       TaskName = "classify-intent"
	TaskAntiDisturbCheck     TaskName = "anti-disturb-check"
	TaskRetrieveContext      TaskName = "retrieve-context"
	TaskGeneratePrimaryCopy  TaskName = "generate-primary-copy"
	TaskGenerateFollowupCopy TaskName = "generate-followup-copy"
)

// MandatoryTasks are the business-critical steps no caller-supplied plan may
// omit while their precondition data is still missing, in dependency order.
var MandatoryTasks = []TaskName{
	TaskFetchProduct,
	TaskFetchBehaviorSummary,
	TaskClassifyIntent,
	TaskAntiDisturbCheck,
}

// OptionalTasks may be included or omitted by callers.
var OptionalTasks = []TaskName{
	TaskRetrieveContext,
	TaskGeneratePrimaryCopy,
	TaskGenerateFollowupCopy,
}

func (t TaskName) Mandatory() bool {
	for _, m := range MandatoryTasks {
		if t == m {
			return true
		}
	}
	return false
}

// Product is the loaded product record the pipeline works against.
type Product struct {
	ID          int64          `json:"id,omitempty"`
	BrandCode   string         `json:"brand_code,omitempty"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Price       float64        `json:"price"`
	Tags        []string       `json:"tags,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Description string         `json:"description,omitempty"`
}

// BehaviorSummary is a snapshot of aggregate behavioral metrics for one user
// and one product. It is derived once from raw logs and handed to the
// classifier unchanged; absent fields stay at their zero values.
type BehaviorSummary struct {
	VisitCount        int      `json:"visit_count"`
	MaxStaySeconds    int      `json:"max_stay_seconds"`
	AvgStaySeconds    float64  `json:"avg_stay_seconds"`
	TotalStaySeconds  int      `json:"total_stay_seconds"`
	HasEnterBuyPage   bool     `json:"has_enter_buy_page"`
	HasFavorite       bool     `json:"has_favorite"`
	HasAddToCart      bool     `json:"has_add_to_cart"`
	HasShare          bool     `json:"has_share"`
	HasClickSizeChart bool     `json:"has_click_size_chart"`
	EventTypes        []string `json:"event_types,omitempty"`
}

// IntentResult pairs a classified level with a human-readable reason.
// Reason is always non-empty; downstream consumers log and display it
// verbatim.
type IntentResult struct {
	Level  IntentLevel `json:"level"`
	Reason string      `json:"reason"`
}

// Message is one role/content pair of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// CopyRequest carries everything the copy writer needs from the pipeline
// context without depending on it.
type CopyRequest struct {
	Product      *Product    `json:"product"`
	IntentLevel  IntentLevel `json:"intent_level"`
	IntentReason string      `json:"intent_reason,omitempty"`
	RAGChunks    []string    `json:"rag_chunks,omitempty"`
	Style        string      `json:"style,omitempty"`
}
