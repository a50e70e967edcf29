// Package product persists and loads product records from Postgres.
package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	"github.com/uptrace/bun"
)

// Model is the products table row. brand_code and sku form the business key.
type Model struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64          `bun:"id,pk,autoincrement"`
	BrandCode   string         `bun:"brand_code,notnull"`
	SKU         string         `bun:"sku,notnull"`
	Name        string         `bun:"name,notnull"`
	Price       float64        `bun:"price,notnull"`
	Tags        []string       `bun:"tags,type:jsonb"`
	Attributes  map[string]any `bun:"attributes,type:jsonb"`
	Description string         `bun:"description"`
}

// Repository implements contract.ProductFetcher over bun.
type Repository struct {
	db *bun.DB
}

var _ contractx.ProductFetcher = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// FetchBySKU loads one product. A missing row maps to ErrProductNotFound so
// callers can tell "no such SKU" from a storage failure.
func (r *Repository) FetchBySKU(ctx context.Context, sku string) (*contractx.Product, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", contractx.ErrValidation)
	}

	var row Model
	err := r.db.NewSelect().
		Model(&row).
		Where("p.sku = ?", sku).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sku=%s", contractx.ErrProductNotFound, sku)
		}
		return nil, fmt.Errorf("select product sku=%s: %w", sku, err)
	}

	return row.toContract(), nil
}

func (m *Model) toContract() *contractx.Product {
	return &contractx.Product{
		ID:          m.ID,
		BrandCode:   m.BrandCode,
		SKU:         m.SKU,
		Name:        m.Name,
		Price:       m.Price,
		Tags:        m.Tags,
		Attributes:  m.Attributes,
		Description: m.Description,
	}
}
