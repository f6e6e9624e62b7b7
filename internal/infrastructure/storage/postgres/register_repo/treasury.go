package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/treasury"
	"mdcars/internal/infrastructure/storage/postgres"
)

const (
	treasuryAccountsTable     = "reg_treasury_accounts"
	treasuryTransactionsTable = "reg_treasury_transactions"
)

// TreasuryRepo implements treasury.Repository.
type TreasuryRepo struct {
	txManager   *postgres.TxManager
	builder     squirrel.StatementBuilderType
	accountCols []string
	txCols      []string
}

// Compile-time check.
var _ treasury.Repository = (*TreasuryRepo)(nil)

// NewTreasuryRepo creates a new treasury repository.
func NewTreasuryRepo(txManager *postgres.TxManager) *TreasuryRepo {
	return &TreasuryRepo{
		txManager:   txManager,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		accountCols: postgres.ExtractDBColumns[treasury.TreasuryAccount](),
		txCols:      postgres.ExtractDBColumns[treasury.TreasuryTransaction](),
	}
}

// CreateAccount inserts a new treasury account.
func (r *TreasuryRepo) CreateAccount(ctx context.Context, a *treasury.TreasuryAccount) error {
	data := postgres.StructToMap(a)

	filtered := make(map[string]any, len(r.accountCols))
	for _, col := range r.accountCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(treasuryAccountsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert treasury account: %w", err)
	}

	return nil
}

// GetAccount retrieves a treasury account by ID.
func (r *TreasuryRepo) GetAccount(ctx context.Context, accountID id.ID) (*treasury.TreasuryAccount, error) {
	q := r.builder.
		Select(r.accountCols...).
		From(treasuryAccountsTable).
		Where(squirrel.Eq{"id": accountID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a treasury.TreasuryAccount
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("treasury account", accountID.String())
		}
		return nil, fmt.Errorf("get treasury account: %w", err)
	}

	return &a, nil
}

// ListAccounts returns treasury accounts ordered by name.
func (r *TreasuryRepo) ListAccounts(ctx context.Context, activeOnly bool) ([]*treasury.TreasuryAccount, error) {
	q := r.builder.
		Select(r.accountCols...).
		From(treasuryAccountsTable).
		OrderBy("name ASC")

	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*treasury.TreasuryAccount
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list treasury accounts: %w", err)
	}

	return items, nil
}

// UpdateAccount modifies an account with optimistic locking. Balance columns
// are excluded; they move only through AddBalance.
func (r *TreasuryRepo) UpdateAccount(ctx context.Context, a *treasury.TreasuryAccount) error {
	data := postgres.StructToMap(a)

	filtered := make(map[string]any, len(r.accountCols))
	for _, col := range r.accountCols {
		switch col {
		case "id", "version", "balance_usd", "balance_lyd":
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.
		Update(treasuryAccountsTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": a.ID}).
		Where(squirrel.Eq{"version": a.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update treasury account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("treasury account", a.ID)
	}

	return nil
}

// AddBalance atomically adds delta to one currency balance of the account.
func (r *TreasuryRepo) AddBalance(ctx context.Context, accountID id.ID, currency types.Currency, delta types.Money) (types.Money, error) {
	var col string
	switch currency {
	case types.CurrencyUSD:
		col = "balance_usd"
	case types.CurrencyLYD:
		col = "balance_lyd"
	default:
		return types.Zero(), apperror.NewValidation("unknown currency").
			WithDetail("currency", string(currency))
	}

	sql := fmt.Sprintf(`
		UPDATE reg_treasury_accounts
		SET %s = %s + $1,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $2 AND %s + $1 >= 0
		RETURNING %s
	`, col, col, col, col)

	var after types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, delta, accountID).Scan(&after)
	if err == pgx.ErrNoRows {
		exists, lookupErr := r.accountExists(ctx, accountID)
		if lookupErr != nil {
			return types.Zero(), lookupErr
		}
		if !exists {
			return types.Zero(), apperror.NewNotFound("treasury account", accountID.String())
		}
		return types.Zero(), apperror.NewBusinessRule(
			apperror.CodeInsufficientBalance, "insufficient account balance").
			WithDetail("account_id", accountID.String()).
			WithDetail("currency", string(currency))
	}
	if err != nil {
		return types.Zero(), fmt.Errorf("add treasury balance: %w", err)
	}

	return after, nil
}

// AppendTransaction inserts one immutable sub-ledger entry.
func (r *TreasuryRepo) AppendTransaction(ctx context.Context, t *treasury.TreasuryTransaction) error {
	data := postgres.StructToMap(t)

	filtered := make(map[string]any, len(r.txCols))
	for _, col := range r.txCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(treasuryTransactionsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert treasury transaction: %w", err)
	}

	return nil
}

// ListTransactions returns sub-ledger history, newest first.
func (r *TreasuryRepo) ListTransactions(ctx context.Context, filter treasury.EntryFilter) ([]*treasury.TreasuryTransaction, error) {
	q := r.builder.
		Select(r.txCols...).
		From(treasuryTransactionsTable).
		OrderBy("created_at DESC")

	if filter.AccountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *filter.AccountID})
	}
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

	var items []*treasury.TreasuryTransaction
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list treasury transactions: %w", err)
	}

	return items, nil
}

func (r *TreasuryRepo) accountExists(ctx context.Context, accountID id.ID) (bool, error) {
	var one int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT 1 FROM reg_treasury_accounts WHERE id = $1`, accountID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return true, nil
}
