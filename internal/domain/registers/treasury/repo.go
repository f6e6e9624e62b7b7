package treasury

import (
	"context"
	"time"

	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// EntryFilter narrows sub-ledger history queries.
type EntryFilter struct {
	AccountID *id.ID
	Types     []EntryType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// Repository is the storage contract for treasury accounts.
type Repository interface {
	CreateAccount(ctx context.Context, a *TreasuryAccount) error
	GetAccount(ctx context.Context, accountID id.ID) (*TreasuryAccount, error)
	ListAccounts(ctx context.Context, activeOnly bool) ([]*TreasuryAccount, error)
	UpdateAccount(ctx context.Context, a *TreasuryAccount) error

	// AddBalance atomically adds delta to the account balance of the
	// given currency and returns the resulting value. Negative deltas
	// carry a non-negative guard; zero affected rows on an existing
	// account means INSUFFICIENT_BALANCE.
	AddBalance(ctx context.Context, accountID id.ID, currency types.Currency, delta types.Money) (types.Money, error)

	// AppendTransaction inserts one immutable sub-ledger entry.
	AppendTransaction(ctx context.Context, t *TreasuryTransaction) error

	// ListTransactions returns sub-ledger history, newest first.
	ListTransactions(ctx context.Context, filter EntryFilter) ([]*TreasuryTransaction, error)
}
