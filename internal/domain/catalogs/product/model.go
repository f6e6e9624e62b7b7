// Package product provides the Product catalog.
package product

import (
	"context"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// Product represents a sellable item. Code carries the sequentially assigned
// SKU. CurrentStock is maintained exclusively through the stock register and
// must never go negative.
type Product struct {
	entity.Catalog

	CostPrice    types.Money `db:"cost_price" json:"costPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	CurrentStock      int64 `db:"current_stock" json:"currentStock"`
	LowStockThreshold int64 `db:"low_stock_threshold" json:"lowStockThreshold"`

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new active product. SKU is assigned on create when
// left empty.
func NewProduct(name string, costPrice, sellingPrice types.Money) *Product {
	return &Product{
		Catalog:      entity.NewCatalog("", name),
		CostPrice:    types.Round2(costPrice),
		SellingPrice: types.Round2(sellingPrice),
		IsActive:     true,
	}
}

// SKU returns the product's sequential identifier.
func (p *Product) SKU() string {
	return p.Code
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price must not be negative").
			WithDetail("field", "costPrice")
	}

	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price must not be negative").
			WithDetail("field", "sellingPrice")
	}

	if p.CurrentStock < 0 {
		return apperror.NewValidation("current stock must not be negative").
			WithDetail("field", "currentStock")
	}

	if p.LowStockThreshold < 0 {
		return apperror.NewValidation("low stock threshold must not be negative").
			WithDetail("field", "lowStockThreshold")
	}

	return nil
}

// IsLowStock reports whether current stock is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.LowStockThreshold
}
