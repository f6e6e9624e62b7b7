package finance

import (
	"context"
	"time"

	"mdcars/internal/core/id"
)

// RecordFilter narrows finance record queries.
type RecordFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// PayableFilter narrows supplier payable queries.
type PayableFilter struct {
	SupplierName string
	UnpaidOnly   bool
	Limit        int
	Offset       int
}

// Repository is the storage contract for finance records.
type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, expenseID id.ID) (*Expense, error)
	DeleteExpense(ctx context.Context, expenseID id.ID) error
	ListExpenses(ctx context.Context, filter RecordFilter) ([]*Expense, error)

	CreateRevenue(ctx context.Context, r *Revenue) error
	GetRevenue(ctx context.Context, revenueID id.ID) (*Revenue, error)
	DeleteRevenue(ctx context.Context, revenueID id.ID) error
	ListRevenues(ctx context.Context, filter RecordFilter) ([]*Revenue, error)

	CreatePayment(ctx context.Context, p *CustomerPayment) error
	ListPayments(ctx context.Context, customerID *id.ID, filter RecordFilter) ([]*CustomerPayment, error)

	CreatePartnerTransaction(ctx context.Context, t *PartnerTransaction) error
	ListPartnerTransactions(ctx context.Context, partnerID *id.ID, filter RecordFilter) ([]*PartnerTransaction, error)

	CreatePayable(ctx context.Context, p *SupplierPayable) error

	// GetPayableForUpdate loads the payable and locks its row for the
	// duration of the surrounding transaction.
	GetPayableForUpdate(ctx context.Context, payableID id.ID) (*SupplierPayable, error)

	// MarkPayablePaid performs the one-way isPaid transition.
	MarkPayablePaid(ctx context.Context, payableID id.ID, paidAt time.Time) error

	ListPayables(ctx context.Context, filter PayableFilter) ([]*SupplierPayable, error)
}
