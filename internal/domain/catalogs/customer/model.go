// Package customer provides the Customer catalog with running credit totals.
package customer

import (
	"context"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/types"
)

// Customer represents a buyer. TotalPurchases and BalanceOwed are running
// totals maintained by sale, return and payment operations; they are never
// set directly through the catalog CRUD.
type Customer struct {
	entity.Catalog

	Phone   string `db:"phone" json:"phone"`
	Email   string `db:"email" json:"email,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	Notes   string `db:"notes" json:"notes,omitempty"`

	// TotalPurchases is the lifetime sum of completed sale totals,
	// reduced by returns.
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`

	// BalanceOwed is the outstanding credit debt. Never negative.
	BalanceOwed types.Money `db:"balance_owed" json:"balanceOwed"`
}

// NewCustomer creates a customer with zeroed running totals.
func NewCustomer(name, phone string) *Customer {
	return &Customer{
		Catalog:        entity.NewCatalog("", name),
		Phone:          phone,
		TotalPurchases: types.Zero(),
		BalanceOwed:    types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.BalanceOwed.IsNegative() {
		return apperror.NewValidation("balance owed must not be negative").
			WithDetail("field", "balanceOwed")
	}

	return nil
}

// HasDebt reports whether the customer owes anything.
func (c *Customer) HasDebt() bool {
	return c.BalanceOwed.IsPositive()
}
