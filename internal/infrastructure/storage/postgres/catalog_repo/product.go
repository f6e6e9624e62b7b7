package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			[]string{"name", "code"},
			func() *product.Product { return &product.Product{} },
		),
	}
}

// ListLowStock returns active products at or below their low stock threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Expr("current_stock <= low_stock_threshold")).
		OrderBy("current_stock ASC", "name ASC")

	return r.FindMany(ctx, q)
}
