package cashbox

import (
	"context"
	"time"

	"mdcars/internal/core/types"
)

// TransactionFilter narrows ledger history queries.
type TransactionFilter struct {
	Types    []TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Repository is the storage contract for the cash ledger.
type Repository interface {
	// Get returns the singleton cashbox, creating the row on first use.
	Get(ctx context.Context) (*Cashbox, error)

	// AddBalance atomically adds delta to the balance of the given
	// currency and returns both balances after the update. A negative
	// delta that would drive the balance below zero affects zero rows;
	// implementations translate that into INSUFFICIENT_BALANCE.
	AddBalance(ctx context.Context, currency types.Currency, delta types.Money) (usd, lyd types.Money, err error)

	// AppendTransaction inserts one immutable ledger entry.
	AppendTransaction(ctx context.Context, t *CashboxTransaction) error

	// ListTransactions returns ledger history, newest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*CashboxTransaction, error)
}
