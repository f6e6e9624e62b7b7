// Package finance provides the money-moving operations outside sales:
// expenses, revenues, customer payments, partner equity transactions and
// supplier payables. Every operation follows the same template: one primary
// record, exactly one cashbox mutation, one ledger entry, one transaction.
package finance

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// Expense is money leaving the cashbox for operating costs.
type Expense struct {
	entity.BaseDocument

	Number      string         `db:"number" json:"number"`
	Category    string         `db:"category" json:"category"`
	Amount      types.Money    `db:"amount" json:"amount"`
	Currency    types.Currency `db:"currency" json:"currency"`
	Description string         `db:"description" json:"description"`
	PersonName  string         `db:"person_name" json:"personName,omitempty"`
	Date        time.Time      `db:"date" json:"date"`
}

// Revenue is money entering the cashbox outside of sales.
type Revenue struct {
	entity.BaseDocument

	Number      string         `db:"number" json:"number"`
	Source      string         `db:"source" json:"source"`
	Amount      types.Money    `db:"amount" json:"amount"`
	Currency    types.Currency `db:"currency" json:"currency"`
	Description string         `db:"description" json:"description"`
	Date        time.Time      `db:"date" json:"date"`
}

// CustomerPayment settles part of a customer's credit debt.
type CustomerPayment struct {
	entity.BaseDocument

	CustomerID id.ID          `db:"customer_id" json:"customerId"`
	Amount     types.Money    `db:"amount" json:"amount"`
	Currency   types.Currency `db:"currency" json:"currency"`
	Notes      string         `db:"notes" json:"notes,omitempty"`
}

// PartnerTransactionType classifies partner equity movements.
type PartnerTransactionType string

const (
	PartnerInvestment         PartnerTransactionType = "investment"
	PartnerWithdrawal         PartnerTransactionType = "withdrawal"
	PartnerProfitDistribution PartnerTransactionType = "profit_distribution"
)

// PartnerTransaction records one equity movement.
type PartnerTransaction struct {
	entity.BaseDocument

	PartnerID id.ID                  `db:"partner_id" json:"partnerId"`
	Type      PartnerTransactionType `db:"type" json:"type"`
	Amount    types.Money            `db:"amount" json:"amount"`
	Currency  types.Currency         `db:"currency" json:"currency"`
	Notes     string                 `db:"notes" json:"notes,omitempty"`
}

// SupplierPayable is an open debt from a credit stock purchase. Settlement
// is a one-way transition: once paid, a payable stays paid.
type SupplierPayable struct {
	entity.BaseDocument

	SupplierName  string         `db:"supplier_name" json:"supplierName"`
	Amount        types.Money    `db:"amount" json:"amount"`
	Currency      types.Currency `db:"currency" json:"currency"`
	InvoiceNumber string         `db:"invoice_number" json:"invoiceNumber,omitempty"`

	StockMovementID *id.ID `db:"stock_movement_id" json:"stockMovementId,omitempty"`

	IsPaid bool       `db:"is_paid" json:"isPaid"`
	PaidAt *time.Time `db:"paid_at" json:"paidAt,omitempty"`
}

// validateAmount checks the shared amount/currency rules.
func validateAmount(amount types.Money, currency types.Currency) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if !currency.Valid() {
		return apperror.NewValidation("unsupported currency").
			WithDetail("field", "currency").
			WithDetail("value", string(currency))
	}
	return nil
}

// ExpenseDraft is the input to CreateExpense.
type ExpenseDraft struct {
	Category    string         `json:"category"`
	Amount      types.Money    `json:"amount"`
	Currency    types.Currency `json:"currency"`
	Description string         `json:"description"`
	PersonName  string         `json:"personName,omitempty"`
	Date        time.Time      `json:"date"`
}

// Validate checks the draft.
func (d *ExpenseDraft) Validate(ctx context.Context) error {
	if d.Category == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	return validateAmount(d.Amount, d.Currency)
}

// RevenueDraft is the input to CreateRevenue.
type RevenueDraft struct {
	Source      string         `json:"source"`
	Amount      types.Money    `json:"amount"`
	Currency    types.Currency `json:"currency"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
}

// Validate checks the draft.
func (d *RevenueDraft) Validate(ctx context.Context) error {
	if d.Source == "" {
		return apperror.NewValidation("source is required").
			WithDetail("field", "source")
	}
	return validateAmount(d.Amount, d.Currency)
}
