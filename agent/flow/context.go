package flow

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
)

// Signals is the inter-step side channel. One step writes a field, a later
// step reads it; no field is ever rewritten by an earlier step. Pointer
// fields stay nil until their producing step has run, which is how callers
// detect that a step was silently skipped.
type Signals struct {
	// ForceAllow overrides the anti-disturb gate unconditionally.
	ForceAllow bool `json:"force_allow,omitempty"`

	// ForceGenerate allows copy generation for low-intent users.
	ForceGenerate bool `json:"force_generate,omitempty"`

	// OutreachAllowed and OutreachBlocked are both written by the gate step.
	OutreachAllowed *bool `json:"outreach_allowed,omitempty"`
	OutreachBlocked *bool `json:"outreach_blocked,omitempty"`

	// IntentReason is written by the classify step and logged verbatim.
	IntentReason string `json:"intent_reason,omitempty"`

	// CopyStyle tags the generation strategy ("natural", "urgent", ...).
	CopyStyle string `json:"copy_style,omitempty"`

	// TaskType "followup" makes the planner schedule the follow-up generator
	// instead of the primary one.
	TaskType string `json:"task_type,omitempty"`
}

// Allowed reports whether the gate has run and permitted outreach.
func (s Signals) Allowed() bool {
	return s.OutreachAllowed != nil && *s.OutreachAllowed
}

// Blocked reports whether the gate has run and denied outreach.
func (s Signals) Blocked() bool {
	return s.OutreachBlocked != nil && *s.OutreachBlocked
}

// Context is the per-request mutable state threaded through every pipeline
// step. It is owned exclusively by the request that created it and must not
// be shared across concurrent requests.
type Context struct {
	UserID  string
	GuideID string
	SKU     string

	Product         *contractx.Product
	BehaviorSummary *contractx.BehaviorSummary
	IntentLevel     contractx.IntentLevel

	RAGChunks []string
	Messages  []contractx.Message

	Signals Signals
}

// Option configures a new Context.
type Option func(*Context)

func WithUserID(id string) Option  { return func(c *Context) { c.UserID = id } }
func WithGuideID(id string) Option { return func(c *Context) { c.GuideID = id } }
func WithSKU(sku string) Option    { return func(c *Context) { c.SKU = sku } }

func WithProduct(p *contractx.Product) Option {
	return func(c *Context) { c.Product = p }
}

func WithBehaviorSummary(s contractx.BehaviorSummary) Option {
	return func(c *Context) { c.BehaviorSummary = &s }
}

func WithMessages(msgs []contractx.Message) Option {
	return func(c *Context) { c.Messages = append(c.Messages[:0], msgs...) }
}

func New(opts ...Option) *Context {
	c := &Context{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// AppendMessage adds one message to the conversation history. Empty role or
// content is a warned no-op; history only ever grows.
func (c *Context) AppendMessage(role, content string) {
	if strings.TrimSpace(role) == "" || strings.TrimSpace(content) == "" {
		log.Warn().
			Str("role", role).
			Int("content_length", len(content)).
			Msg("flow: dropping empty message")
		return
	}
	c.Messages = append(c.Messages, contractx.Message{Role: role, Content: content})
}

// Latest returns a copy of the last n messages, or all of them when n exceeds
// the count. n <= 0 yields an empty slice.
func (c *Context) Latest(n int) []contractx.Message {
	if n <= 0 {
		return nil
	}
	if n > len(c.Messages) {
		n = len(c.Messages)
	}
	out := make([]contractx.Message, n)
	copy(out, c.Messages[len(c.Messages)-n:])
	return out
}

// RenderOptions governs RenderPrompt output.
type RenderOptions struct {
	// IncludeSystem adds the identifier/product/intent header section.
	IncludeSystem bool

	// MaxMessages limits the history section; 0 means all messages.
	MaxMessages int
}

// RenderPrompt formats the current state into a single text block for
// logging or LLM consumption.
func (c *Context) RenderPrompt(opts RenderOptions) string {
	var b strings.Builder

	if opts.IncludeSystem {
		b.WriteString("## System Context\n")
		if c.UserID != "" {
			fmt.Fprintf(&b, "User ID: %s\n", c.UserID)
		}
		if c.GuideID != "" {
			fmt.Fprintf(&b, "Guide ID: %s\n", c.GuideID)
		}
		if c.SKU != "" {
			fmt.Fprintf(&b, "Product SKU: %s\n", c.SKU)
		}
		if c.Product != nil {
			fmt.Fprintf(&b, "Product Name: %s\n", c.Product.Name)
			if c.Product.Price > 0 {
				fmt.Fprintf(&b, "Product Price: %.2f\n", c.Product.Price)
			}
			if len(c.Product.Tags) > 0 {
				fmt.Fprintf(&b, "Product Tags: %s\n", strings.Join(c.Product.Tags, ", "))
			}
		}
		if c.IntentLevel != contractx.IntentUnset {
			fmt.Fprintf(&b, "Intent Level: %s\n", c.IntentLevel)
		}
		if c.BehaviorSummary != nil {
			fmt.Fprintf(&b, "Behavior: %d visits, max stay %ds\n",
				c.BehaviorSummary.VisitCount, c.BehaviorSummary.MaxStaySeconds)
		}
		b.WriteString("\n")
	}

	if len(c.RAGChunks) > 0 {
		b.WriteString("## Related Product Context\n")
		for i, chunk := range c.RAGChunks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, chunk)
		}
		b.WriteString("\n")
	}

	if len(c.Messages) > 0 {
		b.WriteString("## Conversation History\n")
		msgs := c.Messages
		if opts.MaxMessages > 0 && opts.MaxMessages < len(msgs) {
			msgs = msgs[len(msgs)-opts.MaxMessages:]
		}
		for _, msg := range msgs {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	if c.Signals.IntentReason != "" {
		b.WriteString("## Extra Context\n")
		fmt.Fprintf(&b, "intent_reason: %s\n\n", c.Signals.IntentReason)
	}

	return b.String()
}

// Clone produces an independent copy. The Product pointer is shared; all
// slices and the summary are copied so branch execution cannot mutate the
// caller's original.
func (c *Context) Clone() *Context {
	out := &Context{
		UserID:      c.UserID,
		GuideID:     c.GuideID,
		SKU:         c.SKU,
		Product:     c.Product,
		IntentLevel: c.IntentLevel,
		Signals:     c.Signals,
	}
	if c.BehaviorSummary != nil {
		summary := *c.BehaviorSummary
		summary.EventTypes = append([]string(nil), c.BehaviorSummary.EventTypes...)
		out.BehaviorSummary = &summary
	}
	if c.RAGChunks != nil {
		out.RAGChunks = append([]string(nil), c.RAGChunks...)
	}
	if c.Messages != nil {
		out.Messages = append([]contractx.Message(nil), c.Messages...)
	}
	if c.Signals.OutreachAllowed != nil {
		v := *c.Signals.OutreachAllowed
		out.Signals.OutreachAllowed = &v
	}
	if c.Signals.OutreachBlocked != nil {
		v := *c.Signals.OutreachBlocked
		out.Signals.OutreachBlocked = &v
	}
	return out
}
