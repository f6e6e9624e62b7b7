package stock

import (
	"context"
	"time"

	"mdcars/internal/core/id"
)

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID *id.ID
	Types     []MovementType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// Repository is the storage contract for the stock register.
type Repository interface {
	// Append inserts one immutable movement row.
	Append(ctx context.Context, m *StockMovement) error

	// GetByID returns a single movement.
	GetByID(ctx context.Context, movementID id.ID) (*StockMovement, error)

	// List returns movement history, newest first.
	List(ctx context.Context, filter MovementFilter) ([]*StockMovement, error)

	// ApplyDelta atomically adds delta to the product's current stock and
	// returns the resulting value. A negative delta is guarded with
	// `current_stock >= -delta`; zero affected rows on an existing
	// product means INSUFFICIENT_STOCK.
	ApplyDelta(ctx context.Context, productID id.ID, delta int64) (newStock int64, err error)

	// SetStock locks the product row, sets stock to the absolute value,
	// and returns the previous value.
	SetStock(ctx context.Context, productID id.ID, quantity int64) (previousStock int64, err error)
}
