// Package stock provides the append-only inventory movement register.
//
// Product stock changes only through this register. Every change captures
// before/after snapshots, so the movement history replays to the current
// stock of any product.
package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	// MovementIn increases stock (purchase, return).
	MovementIn MovementType = "in"

	// MovementOut decreases stock (sale, damage).
	MovementOut MovementType = "out"

	// MovementAdjustment sets stock to an absolute count (stocktake).
	MovementAdjustment MovementType = "adjustment"
)

// PurchaseType distinguishes how a stock-in was funded.
type PurchaseType string

const (
	PurchaseCash   PurchaseType = "cash"
	PurchaseCredit PurchaseType = "credit"
)

// StockMovement is one immutable register row.
type StockMovement struct {
	entity.BaseDocument

	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"type" json:"type"`

	// Quantity moved. For adjustments this is the absolute stock that was
	// set, not a delta.
	Quantity int64 `db:"quantity" json:"quantity"`

	PreviousStock int64 `db:"previous_stock" json:"previousStock"`
	NewStock      int64 `db:"new_stock" json:"newStock"`

	// CostPerUnit is set for purchases; nil otherwise.
	CostPerUnit *types.Money `db:"cost_per_unit" json:"costPerUnit,omitempty"`

	Reason string `db:"reason" json:"reason"`

	// Purchase details, stock-in only.
	PurchaseType  PurchaseType   `db:"purchase_type" json:"purchaseType,omitempty"`
	Currency      types.Currency `db:"currency" json:"currency,omitempty"`
	SupplierName  string         `db:"supplier_name" json:"supplierName,omitempty"`
	InvoiceNumber string         `db:"invoice_number" json:"invoiceNumber,omitempty"`

	// Link to the document that caused the movement (sale, sale_return).
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   *id.ID `db:"reference_id" json:"referenceId,omitempty"`
}

// TotalCost returns quantity x cost per unit, or zero when cost is unknown.
func (m *StockMovement) TotalCost() types.Money {
	if m.CostPerUnit == nil {
		return types.Zero()
	}
	return types.Round2(m.CostPerUnit.Mul(decimal.NewFromInt(m.Quantity)))
}

// MovementRequest is the input to Record.
type MovementRequest struct {
	ProductID id.ID
	Type      MovementType

	// Quantity to move; for adjustments the absolute stock to set.
	Quantity int64

	CostPerUnit *types.Money
	Reason      string

	PurchaseType  PurchaseType
	Currency      types.Currency
	SupplierName  string
	InvoiceNumber string

	ReferenceType string
	ReferenceID   *id.ID
}

// Validate checks movement invariants.
func (r *MovementRequest) Validate(ctx context.Context) error {
	if id.IsNil(r.ProductID) {
		return apperror.NewValidation("product id is required").
			WithDetail("field", "productId")
	}

	switch r.Type {
	case MovementIn, MovementOut:
		if r.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "quantity")
		}
	case MovementAdjustment:
		if r.Quantity < 0 {
			return apperror.NewValidation("adjusted stock must not be negative").
				WithDetail("field", "quantity")
		}
	default:
		return apperror.NewValidation("unknown movement type").
			WithDetail("field", "type").
			WithDetail("value", string(r.Type))
	}

	if r.Type == MovementIn && r.PurchaseType != "" {
		if r.PurchaseType != PurchaseCash && r.PurchaseType != PurchaseCredit {
			return apperror.NewValidation("unknown purchase type").
				WithDetail("field", "purchaseType").
				WithDetail("value", string(r.PurchaseType))
		}
		if r.CostPerUnit == nil || !r.CostPerUnit.IsPositive() {
			return apperror.NewValidation("purchases require a positive cost per unit").
				WithDetail("field", "costPerUnit")
		}
		if !r.Currency.Valid() {
			return apperror.NewValidation("purchases require a currency").
				WithDetail("field", "currency")
		}
		if r.PurchaseType == PurchaseCredit && r.SupplierName == "" {
			return apperror.NewValidation("credit purchases require a supplier name").
				WithDetail("field", "supplierName")
		}
	}

	if r.Type != MovementIn && r.PurchaseType != "" {
		return apperror.NewValidation("purchase type applies to stock-in only").
			WithDetail("field", "purchaseType")
	}

	if r.CostPerUnit != nil && r.CostPerUnit.IsNegative() {
		return apperror.NewValidation("cost per unit must not be negative").
			WithDetail("field", "costPerUnit")
	}

	return nil
}
