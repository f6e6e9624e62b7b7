package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository. Running totals are mutated
// with atomic in-database increments, never read-modify-write.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// Compile-time check.
var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txManager,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			[]string{"name", "code", "phone"},
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// FindByPhone retrieves a customer by phone number.
func (r *CustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"phone": phone}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", phone)
		}
		return nil, err
	}
	return c, nil
}

// AddPurchases atomically adds delta to the lifetime purchase total.
func (r *CustomerRepo) AddPurchases(ctx context.Context, customerID id.ID, delta types.Money) error {
	sql := `
		UPDATE cat_customers
		SET total_purchases = total_purchases + $1,
		    updated_at = now()
		WHERE id = $2
	`

	result, err := r.Querier(ctx).Exec(ctx, sql, delta, customerID)
	if err != nil {
		return fmt.Errorf("add purchases: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}

	return nil
}

// AddBalanceOwed atomically adds delta to the outstanding debt. A decrement
// that would drive the balance below zero affects zero rows and surfaces as
// a business rule violation.
func (r *CustomerRepo) AddBalanceOwed(ctx context.Context, customerID id.ID, delta types.Money) error {
	sql := `
		UPDATE cat_customers
		SET balance_owed = balance_owed + $1,
		    updated_at = now()
		WHERE id = $2 AND balance_owed + $1 >= 0
	`

	result, err := r.Querier(ctx).Exec(ctx, sql, delta, customerID)
	if err != nil {
		return fmt.Errorf("add balance owed: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.Exists(ctx, customerID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("customer", customerID.String())
		}
		return apperror.NewBusinessRule(apperror.CodeInsufficientBalance,
			"payment exceeds outstanding balance").
			WithDetail("customer_id", customerID.String())
	}

	return nil
}

// ReverseSaleTotals unwinds a returned sale's effect on both running totals.
// Both decrements floor at zero.
func (r *CustomerRepo) ReverseSaleTotals(ctx context.Context, customerID id.ID, amountDue, totalAmount types.Money) error {
	sql := `
		UPDATE cat_customers
		SET balance_owed = GREATEST(balance_owed - $1, 0),
		    total_purchases = GREATEST(total_purchases - $2, 0),
		    updated_at = now()
		WHERE id = $3
	`

	result, err := r.Querier(ctx).Exec(ctx, sql, amountDue, totalAmount, customerID)
	if err != nil {
		return fmt.Errorf("reverse sale totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}

	return nil
}

// ListDebtors returns customers with a positive outstanding balance, largest
// debt first.
func (r *CustomerRepo) ListDebtors(ctx context.Context) ([]*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Gt{"balance_owed": 0}).
		OrderBy("balance_owed DESC", "name ASC")

	return r.FindMany(ctx, q)
}
