package partner

import (
	"context"

	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain"
)

// CounterKind names one of the partner running totals.
type CounterKind string

const (
	CounterInvested          CounterKind = "total_invested"
	CounterWithdrawn         CounterKind = "total_withdrawn"
	CounterProfitDistributed CounterKind = "total_profit_distributed"
)

// Repository extends the catalog contract with atomic counter increments.
type Repository interface {
	domain.CatalogRepository[*Partner]

	// AddCounter atomically adds amount to the named running total.
	AddCounter(ctx context.Context, partnerID id.ID, counter CounterKind, amount types.Money) error
}
