package sale

import (
	"context"

	"mdcars/internal/core/id"
)

// Repository is the storage contract for sale documents.
type Repository interface {
	// Create inserts the header and its items.
	Create(ctx context.Context, s *Sale) error

	// GetByID returns the sale with items hydrated.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetByNumber returns the sale with items hydrated.
	GetByNumber(ctx context.Context, saleNumber string) (*Sale, error)

	// GetForUpdate loads the sale (items hydrated) and locks the header
	// row for the duration of the surrounding transaction.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	// UpdateStatus transitions the document status.
	UpdateStatus(ctx context.Context, saleID id.ID, status Status) error

	// List returns sale headers, newest first. Items are not hydrated.
	List(ctx context.Context, filter ListFilter) ([]*Sale, error)
}
