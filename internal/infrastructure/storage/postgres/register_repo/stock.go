// Package register_repo provides PostgreSQL implementations for the stock,
// cashbox and treasury registers.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/domain/registers/stock"
	"mdcars/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "reg_stock_movements"

// StockRepo implements stock.Repository. Movement rows are immutable; the
// product's current_stock column is mutated only through guarded atomic
// updates.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	cols      []string
}

// Compile-time check.
var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:      postgres.ExtractDBColumns[stock.StockMovement](),
	}
}

// Append inserts one immutable movement row.
func (r *StockRepo) Append(ctx context.Context, m *stock.StockMovement) error {
	data := postgres.StructToMap(m)

	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(stockMovementsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetByID returns a single movement.
func (r *StockRepo) GetByID(ctx context.Context, movementID id.ID) (*stock.StockMovement, error) {
	q := r.builder.
		Select(r.cols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m stock.StockMovement
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	return &m, nil
}

// List returns movement history, newest first.
func (r *StockRepo) List(ctx context.Context, filter stock.MovementFilter) ([]*stock.StockMovement, error) {
	q := r.builder.
		Select(r.cols...).
		From(stockMovementsTable).
		OrderBy("created_at DESC")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
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

	var items []*stock.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return items, nil
}

// ApplyDelta atomically adds delta to the product's current stock. The
// non-negative guard makes an oversell affect zero rows instead of writing a
// negative quantity.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) (int64, error) {
	sql := `
		UPDATE cat_products
		SET current_stock = current_stock + $1,
		    updated_at = now()
		WHERE id = $2 AND current_stock + $1 >= 0
		RETURNING current_stock
	`

	var newStock int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, delta, productID).Scan(&newStock)
	if err == pgx.ErrNoRows {
		// Either the product is missing or the guard rejected the decrement.
		available, lookupErr := r.currentStock(ctx, productID)
		if lookupErr != nil {
			return 0, lookupErr
		}
		return 0, apperror.NewInsufficientStock(productID.String(), -delta, available)
	}
	if err != nil {
		return 0, fmt.Errorf("apply stock delta: %w", err)
	}

	return newStock, nil
}

// SetStock locks the product row, sets stock to the absolute value and
// returns the previous value.
func (r *StockRepo) SetStock(ctx context.Context, productID id.ID, quantity int64) (int64, error) {
	var previous int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT current_stock FROM cat_products WHERE id = $1 FOR UPDATE
	`, productID).Scan(&previous)
	if err == pgx.ErrNoRows {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("lock product: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE cat_products SET current_stock = $1, updated_at = now() WHERE id = $2
	`, quantity, productID)
	if err != nil {
		return 0, fmt.Errorf("set stock: %w", err)
	}

	return previous, nil
}

func (r *StockRepo) currentStock(ctx context.Context, productID id.ID) (int64, error) {
	var current int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT current_stock FROM cat_products WHERE id = $1`, productID).Scan(&current)
	if err == pgx.ErrNoRows {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("read current stock: %w", err)
	}
	return current, nil
}
