package product

import (
	"context"

	"mdcars/internal/core/id"
	"mdcars/internal/domain"
)

// Repository extends the catalog contract with stock-aware queries. Stock
// mutations themselves live in the stock register; the catalog repository is
// read-only with respect to CurrentStock.
type Repository interface {
	domain.CatalogRepository[*Product]

	// ListLowStock returns active products whose current stock is at or
	// below their low stock threshold.
	ListLowStock(ctx context.Context) ([]*Product, error)

	// GetForUpdate loads a product and locks its row for the duration of
	// the surrounding transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)
}
