// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs substring search on searchable fields (name, phone, sku)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// ActiveOnly restricts to active records where the entity supports it
	ActiveOnly bool

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// CatalogRepository defines CRUD operations for catalog entities
// (products, customers, partners).
type CatalogRepository[T entity.Validatable] interface {
	// Create inserts a new entity
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetByCode retrieves entity by code (unique)
	GetByCode(ctx context.Context, code string) (T, error)

	// Update modifies existing entity (with optimistic locking)
	Update(ctx context.Context, entity T) error

	// Delete removes the entity
	Delete(ctx context.Context, id id.ID) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if entity with given ID exists
	Exists(ctx context.Context, id id.ID) (bool, error)

	// ExistsByCode checks if entity with given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// --- Hooks ---

// Hook is a lifecycle callback invoked around catalog mutations.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle callbacks for a catalog service.
// Entity-specific services register hooks for enrichment (code assignment,
// uniqueness checks) without overriding the shared CRUD flow.
type HookRegistry[T any] struct {
	beforeCreate []Hook[T]
	afterCreate  []Hook[T]
	beforeUpdate []Hook[T]
	afterUpdate  []Hook[T]
	beforeDelete []Hook[T]
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{}
}

// OnBeforeCreate registers a before-create hook.
func (r *HookRegistry[T]) OnBeforeCreate(h Hook[T]) { r.beforeCreate = append(r.beforeCreate, h) }

// OnAfterCreate registers an after-create hook.
func (r *HookRegistry[T]) OnAfterCreate(h Hook[T]) { r.afterCreate = append(r.afterCreate, h) }

// OnBeforeUpdate registers a before-update hook.
func (r *HookRegistry[T]) OnBeforeUpdate(h Hook[T]) { r.beforeUpdate = append(r.beforeUpdate, h) }

// OnAfterUpdate registers an after-update hook.
func (r *HookRegistry[T]) OnAfterUpdate(h Hook[T]) { r.afterUpdate = append(r.afterUpdate, h) }

// OnBeforeDelete registers a before-delete hook.
func (r *HookRegistry[T]) OnBeforeDelete(h Hook[T]) { r.beforeDelete = append(r.beforeDelete, h) }

// RunBeforeCreate runs registered before-create hooks in order.
func (r *HookRegistry[T]) RunBeforeCreate(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeCreate, e)
}

// RunAfterCreate runs registered after-create hooks in order.
func (r *HookRegistry[T]) RunAfterCreate(ctx context.Context, e T) error {
	return runHooks(ctx, r.afterCreate, e)
}

// RunBeforeUpdate runs registered before-update hooks in order.
func (r *HookRegistry[T]) RunBeforeUpdate(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeUpdate, e)
}

// RunAfterUpdate runs registered after-update hooks in order.
func (r *HookRegistry[T]) RunAfterUpdate(ctx context.Context, e T) error {
	return runHooks(ctx, r.afterUpdate, e)
}

// RunBeforeDelete runs registered before-delete hooks in order.
func (r *HookRegistry[T]) RunBeforeDelete(ctx context.Context, e T) error {
	return runHooks(ctx, r.beforeDelete, e)
}

func runHooks[T any](ctx context.Context, hooks []Hook[T], e T) error {
	for _, h := range hooks {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
