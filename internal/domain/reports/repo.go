package reports

import (
	"context"
	"time"

	"mdcars/internal/core/types"
)

// Repository is the read-only aggregation contract. All queries tolerate
// empty windows and return zeros, never errors, for no data.
type Repository interface {
	// SalesSummary returns completed-sale count and revenue per currency
	// within [from, to).
	SalesSummary(ctx context.Context, from, to time.Time) (count int64, revenueLYD, revenueUSD types.Money, err error)

	CountProducts(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)

	// BestSellers groups completed sale items by product within [from, to),
	// ordered by quantity sold descending with stable ties.
	BestSellers(ctx context.Context, from, to time.Time, limit int) ([]*BestSeller, error)

	// DailySales buckets completed sales by day within [from, to).
	DailySales(ctx context.Context, from, to time.Time) ([]*SalesPoint, error)

	// MonthlySales buckets completed sales by month for one year.
	MonthlySales(ctx context.Context, year int) ([]*SalesPoint, error)
}
