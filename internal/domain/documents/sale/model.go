// Package sale provides the sale document engine: creation with stock,
// customer and cashbox effects, and full-inverse returns.
package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// Status is the sale document lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod describes how the sale was settled at the counter.
type PaymentMethod string

const (
	// PaymentCash means the full total was paid on the spot.
	PaymentCash PaymentMethod = "cash"

	// PaymentPartial means part of the total went on customer credit.
	PaymentPartial PaymentMethod = "partial"
)

// SaleItem is one sold line. Product name, sku and cost are denormalized at
// sale time so later catalog edits do not rewrite history.
type SaleItem struct {
	entity.BaseEntity

	SaleID    id.ID `db:"sale_id" json:"saleId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	ProductName string `db:"product_name" json:"productName"`
	ProductSKU  string `db:"product_sku" json:"productSku"`

	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// TotalPrice = Quantity x UnitPrice.
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`

	// Profit = (UnitPrice - CostPrice) x Quantity.
	Profit types.Money `db:"profit" json:"profit"`
}

// Sale is the document header.
type Sale struct {
	entity.BaseDocument

	SaleNumber string `db:"sale_number" json:"saleNumber"`

	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	Discount    types.Money `db:"discount" json:"discount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	AmountPaid  types.Money `db:"amount_paid" json:"amountPaid"`
	AmountDue   types.Money `db:"amount_due" json:"amountDue"`

	PaymentMethod PaymentMethod  `db:"payment_method" json:"paymentMethod"`
	Currency      types.Currency `db:"currency" json:"currency"`
	ExchangeRate  types.Money    `db:"exchange_rate" json:"exchangeRate"`

	Status Status `db:"status" json:"status"`

	Notes string `db:"notes" json:"notes,omitempty"`

	Items []*SaleItem `db:"-" json:"items"`
}

// TotalProfit sums the item profits.
func (s *Sale) TotalProfit() types.Money {
	total := types.Zero()
	for _, it := range s.Items {
		total = total.Add(it.Profit)
	}
	return total
}

// DraftItem is one requested line of a new sale.
type DraftItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
}

// Draft is the input to Create. Amounts are what the cashier entered; the
// engine recomputes and verifies the arithmetic before posting anything.
type Draft struct {
	CustomerID *id.ID      `json:"customerId,omitempty"`
	Items      []DraftItem `json:"items"`

	Discount   types.Money `json:"discount"`
	AmountPaid types.Money `json:"amountPaid"`

	PaymentMethod PaymentMethod  `json:"paymentMethod"`
	Currency      types.Currency `json:"currency"`
	ExchangeRate  types.Money    `json:"exchangeRate"`

	Notes string `json:"notes,omitempty"`
}

// Validate checks draft invariants that need no database access.
func (d *Draft) Validate(ctx context.Context) error {
	if len(d.Items) == 0 {
		return apperror.NewValidation("sale requires at least one item").
			WithDetail("field", "items")
	}

	for i, it := range d.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("item product id is required").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		if !it.UnitPrice.IsPositive() {
			return apperror.NewValidation("item unit price must be positive").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
	}

	if d.Discount.IsNegative() {
		return apperror.NewValidation("discount must not be negative").
			WithDetail("field", "discount")
	}
	if d.AmountPaid.IsNegative() {
		return apperror.NewValidation("amount paid must not be negative").
			WithDetail("field", "amountPaid")
	}

	switch d.PaymentMethod {
	case PaymentCash, PaymentPartial:
	default:
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(d.PaymentMethod))
	}

	if !d.Currency.Valid() {
		return apperror.NewValidation("unsupported currency").
			WithDetail("field", "currency").
			WithDetail("value", string(d.Currency))
	}

	subtotal := types.Zero()
	for _, it := range d.Items {
		subtotal = subtotal.Add(types.Round2(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))))
	}

	if d.Discount.GreaterThan(subtotal) {
		return apperror.NewValidation("discount exceeds subtotal").
			WithDetail("field", "discount").
			WithDetail("subtotal", subtotal.StringFixed(2))
	}

	total := subtotal.Sub(d.Discount)
	if d.AmountPaid.GreaterThan(total) {
		return apperror.NewValidation("amount paid exceeds total").
			WithDetail("field", "amountPaid").
			WithDetail("total", total.StringFixed(2))
	}

	due := total.Sub(d.AmountPaid)
	if due.IsPositive() {
		if d.PaymentMethod == PaymentCash {
			return apperror.NewValidation("cash sales must be paid in full").
				WithDetail("field", "amountPaid").
				WithDetail("due", due.StringFixed(2))
		}
		if d.CustomerID == nil {
			return apperror.NewValidation("credit sales require a customer").
				WithDetail("field", "customerId")
		}
	}

	return nil
}

// ListFilter narrows sale queries.
type ListFilter struct {
	CustomerID *id.ID
	Status     Status
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
