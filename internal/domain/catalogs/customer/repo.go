package customer

import (
	"context"

	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain"
)

// Repository extends the catalog contract with credit-ledger operations.
// Balance mutations are atomic in-database increments, not read-modify-write.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByPhone returns the customer with the given phone, or not found.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// AddPurchases atomically adds delta (may be negative for returns)
	// to the customer's lifetime purchase total.
	AddPurchases(ctx context.Context, customerID id.ID, delta types.Money) error

	// AddBalanceOwed atomically adds delta to the outstanding debt.
	// Implementations reject updates that would drive the balance below
	// zero with zero affected rows.
	AddBalanceOwed(ctx context.Context, customerID id.ID, delta types.Money) error

	// ReverseSaleTotals undoes a sale's effect on the running totals when
	// the sale is returned. Both decrements floor at zero so a return
	// after intermediate payments can not drive the totals negative.
	ReverseSaleTotals(ctx context.Context, customerID id.ID, amountDue, totalAmount types.Money) error

	// ListDebtors returns customers with a positive balance owed.
	ListDebtors(ctx context.Context) ([]*Customer, error)
}
