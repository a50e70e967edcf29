// Package behavior loads raw user behavior logs and condenses them into the
// summary the intent classifier consumes.
package behavior

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	"github.com/uptrace/bun"
)

// Event types recorded by the tracking pipeline.
const (
	EventBrowse         = "browse"
	EventEnterBuyPage   = "enter_buy_page"
	EventClickSizeChart = "click_size_chart"
	EventFavorite       = "favorite"
	EventAddToCart      = "add_to_cart"
	EventShare          = "share"
)

// LogModel is the user_behavior_logs table row.
type LogModel struct {
	bun.BaseModel `bun:"table:user_behavior_logs,alias:ubl"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	GuideID     string    `bun:"guide_id,notnull"`
	SKU         string    `bun:"sku,notnull"`
	EventType   string    `bun:"event_type,notnull"`
	StaySeconds int       `bun:"stay_seconds,notnull,default:0"`
	OccurredAt  time.Time `bun:"occurred_at,notnull"`
}

// Repository implements contract.BehaviorFetcher over bun.
type Repository struct {
	db *bun.DB
}

var _ contractx.BehaviorFetcher = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Summary loads the most recent logs for a user/sku pair and condenses them.
// limit caps the number of rows; 0 or negative means a sensible default.
func (r *Repository) Summary(
	ctx context.Context,
	userID, sku string,
	limit int,
) (contractx.BehaviorSummary, error) {
	if userID == "" || sku == "" {
		return contractx.BehaviorSummary{}, fmt.Errorf("%w: user id and sku are required", contractx.ErrValidation)
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []LogModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("ubl.user_id = ?", userID).
		Where("ubl.sku = ?", sku).
		Order("ubl.occurred_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return contractx.BehaviorSummary{}, fmt.Errorf("select behavior logs user=%s sku=%s: %w", userID, sku, err)
	}

	return Summarize(rows), nil
}

// Summarize condenses raw log rows into the classifier's input. Each row
// counts as one visit; flag fields record whether the event ever occurred.
// It never fails: no rows yield the zero summary.
func Summarize(rows []LogModel) contractx.BehaviorSummary {
	summary := contractx.BehaviorSummary{VisitCount: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		summary.TotalStaySeconds += row.StaySeconds
		if row.StaySeconds > summary.MaxStaySeconds {
			summary.MaxStaySeconds = row.StaySeconds
		}

		if !seen[row.EventType] {
			seen[row.EventType] = true
			summary.EventTypes = append(summary.EventTypes, row.EventType)
		}

		switch row.EventType {
		case EventEnterBuyPage:
			summary.HasEnterBuyPage = true
		case EventFavorite:
			summary.HasFavorite = true
		case EventAddToCart:
			summary.HasAddToCart = true
		case EventShare:
			summary.HasShare = true
		case EventClickSizeChart:
			summary.HasClickSizeChart = true
		}
	}

	summary.AvgStaySeconds = float64(summary.TotalStaySeconds) / float64(len(rows))
	return summary
}
