// Package finance_repo provides the PostgreSQL implementation of the finance
// record store: expenses, revenues, payments, partner transactions and
// supplier payables.
package finance_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/domain/finance"
	"mdcars/internal/infrastructure/storage/postgres"
)

const (
	expensesTable            = "fin_expenses"
	revenuesTable            = "fin_revenues"
	paymentsTable            = "fin_customer_payments"
	partnerTransactionsTable = "fin_partner_transactions"
	payablesTable            = "fin_supplier_payables"
)

// Repo implements finance.Repository.
type Repo struct {
	txManager   *postgres.TxManager
	builder     squirrel.StatementBuilderType
	expenseCols []string
	revenueCols []string
	paymentCols []string
	partnerCols []string
	payableCols []string
}

// Compile-time check.
var _ finance.Repository = (*Repo)(nil)

// NewRepo creates a new finance repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager:   txManager,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		expenseCols: postgres.ExtractDBColumns[finance.Expense](),
		revenueCols: postgres.ExtractDBColumns[finance.Revenue](),
		paymentCols: postgres.ExtractDBColumns[finance.CustomerPayment](),
		partnerCols: postgres.ExtractDBColumns[finance.PartnerTransaction](),
		payableCols: postgres.ExtractDBColumns[finance.SupplierPayable](),
	}
}

func (r *Repo) insert(ctx context.Context, table string, cols []string, entity any) error {
	data := postgres.StructToMap(entity)

	filtered := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder.Insert(table).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

func applyRecordFilter(q squirrel.SelectBuilder, filter finance.RecordFilter) squirrel.SelectBuilder {
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// --- Expenses ---

// CreateExpense inserts an expense record.
func (r *Repo) CreateExpense(ctx context.Context, e *finance.Expense) error {
	return r.insert(ctx, expensesTable, r.expenseCols, e)
}

// GetExpense retrieves an expense by ID.
func (r *Repo) GetExpense(ctx context.Context, expenseID id.ID) (*finance.Expense, error) {
	q := r.builder.
		Select(r.expenseCols...).
		From(expensesTable).
		Where(squirrel.Eq{"id": expenseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e finance.Expense
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}

	return &e, nil
}

// DeleteExpense removes an expense record. The compensating cashbox entry is
// the service's responsibility.
func (r *Repo) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	return r.deleteByID(ctx, expensesTable, "expense", expenseID)
}

// ListExpenses returns expenses, newest first.
func (r *Repo) ListExpenses(ctx context.Context, filter finance.RecordFilter) ([]*finance.Expense, error) {
	q := applyRecordFilter(r.builder.
		Select(r.expenseCols...).
		From(expensesTable).
		OrderBy("date DESC, created_at DESC"), filter)

	var items []*finance.Expense
	if err := r.selectMany(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}

// --- Revenues ---

// CreateRevenue inserts a revenue record.
func (r *Repo) CreateRevenue(ctx context.Context, rev *finance.Revenue) error {
	return r.insert(ctx, revenuesTable, r.revenueCols, rev)
}

// GetRevenue retrieves a revenue by ID.
func (r *Repo) GetRevenue(ctx context.Context, revenueID id.ID) (*finance.Revenue, error) {
	q := r.builder.
		Select(r.revenueCols...).
		From(revenuesTable).
		Where(squirrel.Eq{"id": revenueID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rev finance.Revenue
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rev, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("revenue", revenueID.String())
		}
		return nil, fmt.Errorf("get revenue: %w", err)
	}

	return &rev, nil
}

// DeleteRevenue removes a revenue record.
func (r *Repo) DeleteRevenue(ctx context.Context, revenueID id.ID) error {
	return r.deleteByID(ctx, revenuesTable, "revenue", revenueID)
}

// ListRevenues returns revenues, newest first.
func (r *Repo) ListRevenues(ctx context.Context, filter finance.RecordFilter) ([]*finance.Revenue, error) {
	q := applyRecordFilter(r.builder.
		Select(r.revenueCols...).
		From(revenuesTable).
		OrderBy("date DESC, created_at DESC"), filter)

	var items []*finance.Revenue
	if err := r.selectMany(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("list revenues: %w", err)
	}
	return items, nil
}

// --- Customer payments ---

// CreatePayment inserts a customer payment record.
func (r *Repo) CreatePayment(ctx context.Context, p *finance.CustomerPayment) error {
	return r.insert(ctx, paymentsTable, r.paymentCols, p)
}

// ListPayments returns payments, newest first, optionally for one customer.
func (r *Repo) ListPayments(ctx context.Context, customerID *id.ID, filter finance.RecordFilter) ([]*finance.CustomerPayment, error) {
	q := r.builder.
		Select(r.paymentCols...).
		From(paymentsTable).
		OrderBy("created_at DESC")

	if customerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *customerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.DateTo})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var items []*finance.CustomerPayment
	if err := r.selectMany(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return items, nil
}

// --- Partner transactions ---

// CreatePartnerTransaction inserts a partner equity transaction.
func (r *Repo) CreatePartnerTransaction(ctx context.Context, t *finance.PartnerTransaction) error {
	return r.insert(ctx, partnerTransactionsTable, r.partnerCols, t)
}

// ListPartnerTransactions returns partner transactions, newest first,
// optionally for one partner.
func (r *Repo) ListPartnerTransactions(ctx context.Context, partnerID *id.ID, filter finance.RecordFilter) ([]*finance.PartnerTransaction, error) {
	q := r.builder.
		Select(r.partnerCols...).
		From(partnerTransactionsTable).
		OrderBy("created_at DESC")

	if partnerID != nil {
		q = q.Where(squirrel.Eq{"partner_id": *partnerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.DateTo})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var items []*finance.PartnerTransaction
	if err := r.selectMany(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("list partner transactions: %w", err)
	}
	return items, nil
}

// --- Supplier payables ---

// CreatePayable inserts a supplier payable.
func (r *Repo) CreatePayable(ctx context.Context, p *finance.SupplierPayable) error {
	return r.insert(ctx, payablesTable, r.payableCols, p)
}

// GetPayableForUpdate loads the payable and locks its row for the duration
// of the surrounding transaction.
func (r *Repo) GetPayableForUpdate(ctx context.Context, payableID id.ID) (*finance.SupplierPayable, error) {
	q := r.builder.
		Select(r.payableCols...).
		From(payablesTable).
		Where(squirrel.Eq{"id": payableID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p finance.SupplierPayable
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier payable", payableID.String())
		}
		return nil, fmt.Errorf("get payable for update: %w", err)
	}

	return &p, nil
}

// MarkPayablePaid performs the one-way isPaid transition. The predicate on
// is_paid makes a repeated call affect zero rows.
func (r *Repo) MarkPayablePaid(ctx context.Context, payableID id.ID, paidAt time.Time) error {
	sql := `
		UPDATE fin_supplier_payables
		SET is_paid = true,
		    paid_at = $1,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $2 AND is_paid = false
	`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, paidAt, payableID)
	if err != nil {
		return fmt.Errorf("mark payable paid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewBusinessRule(apperror.CodePayableAlreadyPaid,
			"payable is already settled").
			WithDetail("payable_id", payableID.String())
	}

	return nil
}

// ListPayables returns supplier payables, unpaid first then newest first.
func (r *Repo) ListPayables(ctx context.Context, filter finance.PayableFilter) ([]*finance.SupplierPayable, error) {
	q := r.builder.
		Select(r.payableCols...).
		From(payablesTable).
		OrderBy("is_paid ASC", "created_at DESC")

	if filter.SupplierName != "" {
		q = q.Where(squirrel.ILike{"supplier_name": "%" + filter.SupplierName + "%"})
	}
	if filter.UnpaidOnly {
		q = q.Where(squirrel.Eq{"is_paid": false})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var items []*finance.SupplierPayable
	if err := r.selectMany(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	return items, nil
}

// --- helpers ---

func (r *Repo) selectMany(ctx context.Context, q squirrel.SelectBuilder, dest any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), dest, sql, args...)
}

func (r *Repo) deleteByID(ctx context.Context, table, entityName string, entityID id.ID) error {
	sql, args, err := r.builder.Delete(table).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entityName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(entityName, entityID.String())
	}

	return nil
}
