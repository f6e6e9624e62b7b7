package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/infrastructure/storage/postgres"
)

const (
	cashboxTable             = "reg_cashbox"
	cashboxTransactionsTable = "reg_cashbox_transactions"
)

// CashboxRepo implements cashbox.Repository. The cashbox is a singleton row
// created on first access; balance mutations are guarded atomic updates that
// return both balances for the ledger snapshot.
type CashboxRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	txCols    []string
}

// Compile-time check.
var _ cashbox.Repository = (*CashboxRepo)(nil)

// NewCashboxRepo creates a new cashbox repository.
func NewCashboxRepo(txManager *postgres.TxManager) *CashboxRepo {
	return &CashboxRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txCols:    postgres.ExtractDBColumns[cashbox.CashboxTransaction](),
	}
}

// Get returns the singleton cashbox, creating the row on first use.
func (r *CashboxRepo) Get(ctx context.Context) (*cashbox.Cashbox, error) {
	querier := r.txManager.GetQuerier(ctx)

	var box cashbox.Cashbox
	err := pgxscan.Get(ctx, querier, &box, `
		SELECT id, version, balance_usd, balance_lyd, updated_at
		FROM reg_cashbox
		LIMIT 1
	`)
	if err == nil {
		return &box, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("get cashbox: %w", err)
	}

	if err := r.ensureRow(ctx); err != nil {
		return nil, err
	}

	// Re-read: a concurrent first use may have won the insert.
	if err := pgxscan.Get(ctx, querier, &box, `
		SELECT id, version, balance_usd, balance_lyd, updated_at
		FROM reg_cashbox
		LIMIT 1
	`); err != nil {
		return nil, fmt.Errorf("reread cashbox: %w", err)
	}

	return &box, nil
}

// AddBalance atomically adds delta to the balance of the given currency. A
// decrement that would overdraw affects zero rows and surfaces as
// INSUFFICIENT_BALANCE.
func (r *CashboxRepo) AddBalance(ctx context.Context, currency types.Currency, delta types.Money) (types.Money, types.Money, error) {
	var col string
	switch currency {
	case types.CurrencyUSD:
		col = "balance_usd"
	case types.CurrencyLYD:
		col = "balance_lyd"
	default:
		return types.Zero(), types.Zero(), apperror.NewValidation("unknown currency").
			WithDetail("currency", string(currency))
	}

	usd, lyd, err := r.applyDelta(ctx, col, delta)
	if err == pgx.ErrNoRows {
		// Zero rows can also mean a fresh store with no cashbox row yet,
		// not only an overdraw. Create the row and retry once.
		if ensureErr := r.ensureRow(ctx); ensureErr != nil {
			return types.Zero(), types.Zero(), ensureErr
		}
		usd, lyd, err = r.applyDelta(ctx, col, delta)
	}
	if err == pgx.ErrNoRows {
		return types.Zero(), types.Zero(), apperror.NewBusinessRule(
			apperror.CodeInsufficientBalance, "insufficient cashbox balance").
			WithDetail("currency", string(currency)).
			WithDetail("delta", types.FormatMoney(delta))
	}
	if err != nil {
		return types.Zero(), types.Zero(), fmt.Errorf("add cashbox balance: %w", err)
	}

	return usd, lyd, nil
}

func (r *CashboxRepo) applyDelta(ctx context.Context, col string, delta types.Money) (types.Money, types.Money, error) {
	// Singleton row, no id predicate needed.
	sql := fmt.Sprintf(`
		UPDATE reg_cashbox
		SET %s = %s + $1,
		    version = version + 1,
		    updated_at = now()
		WHERE %s + $1 >= 0
		RETURNING balance_usd, balance_lyd
	`, col, col, col)

	var usd, lyd types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, delta).Scan(&usd, &lyd)
	return usd, lyd, err
}

// ensureRow inserts the singleton cashbox row with zero balances if the
// table is empty. Safe under concurrent first use.
func (r *CashboxRepo) ensureRow(ctx context.Context) error {
	fresh := &cashbox.Cashbox{
		BaseEntity: entity.NewBaseEntity(),
		BalanceUSD: types.Zero(),
		BalanceLYD: types.Zero(),
	}

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO reg_cashbox (id, version, balance_usd, balance_lyd, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT DO NOTHING
	`, fresh.ID, fresh.Version, fresh.BalanceUSD, fresh.BalanceLYD)
	if err != nil {
		return fmt.Errorf("create cashbox: %w", err)
	}
	return nil
}

// AppendTransaction inserts one immutable ledger entry.
func (r *CashboxRepo) AppendTransaction(ctx context.Context, t *cashbox.CashboxTransaction) error {
	data := postgres.StructToMap(t)

	filtered := make(map[string]any, len(r.txCols))
	for _, col := range r.txCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(cashboxTransactionsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert cashbox transaction: %w", err)
	}

	return nil
}

// ListTransactions returns ledger history, newest first.
func (r *CashboxRepo) ListTransactions(ctx context.Context, filter cashbox.TransactionFilter) ([]*cashbox.CashboxTransaction, error) {
	q := r.builder.
		Select(r.txCols...).
		From(cashboxTransactionsTable).
		OrderBy("created_at DESC")

	if len(filter.Types) > 0 {
		q = q.Where(squirrel.Eq{"type": filter.Types})
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

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*cashbox.CashboxTransaction
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list cashbox transactions: %w", err)
	}

	return items, nil
}
