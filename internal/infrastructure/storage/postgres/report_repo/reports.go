// Package report_repo provides the PostgreSQL read-side aggregation queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"mdcars/internal/core/types"
	"mdcars/internal/domain/reports"
	"mdcars/internal/infrastructure/storage/postgres"
)

// Repo implements reports.Repository. All queries aggregate with COALESCE so
// an empty window yields zeros, never NULL scan failures.
type Repo struct {
	txManager *postgres.TxManager
}

// Compile-time check.
var _ reports.Repository = (*Repo)(nil)

// NewRepo creates a new report repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

// SalesSummary returns completed-sale count and revenue per currency within
// [from, to).
func (r *Repo) SalesSummary(ctx context.Context, from, to time.Time) (int64, types.Money, types.Money, error) {
	sql := `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE currency = 'LYD'), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE currency = 'USD'), 0)
		FROM doc_sales
		WHERE status = 'completed'
		  AND created_at >= $1 AND created_at < $2
	`

	var count int64
	var lyd, usd types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, from, to).Scan(&count, &lyd, &usd)
	if err != nil {
		return 0, types.Zero(), types.Zero(), fmt.Errorf("sales summary: %w", err)
	}

	return count, lyd, usd, nil
}

// CountProducts returns the number of active products.
func (r *Repo) CountProducts(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM cat_products WHERE is_active = true`)
}

// CountLowStock returns the number of active products at or below their low
// stock threshold.
func (r *Repo) CountLowStock(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `
		SELECT COUNT(*) FROM cat_products
		WHERE is_active = true AND current_stock <= low_stock_threshold
	`)
}

// CountCustomers returns the number of customers.
func (r *Repo) CountCustomers(ctx context.Context) (int64, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM cat_customers`)
}

func (r *Repo) countRow(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BestSellers groups completed sale items by product within [from, to).
// Ties are broken by product name for a stable ordering.
func (r *Repo) BestSellers(ctx context.Context, from, to time.Time, limit int) ([]*reports.BestSeller, error) {
	sql := `
		SELECT i.product_id,
		       i.product_name,
		       i.product_sku,
		       SUM(i.quantity)    AS quantity_sold,
		       SUM(i.total_price) AS revenue
		FROM doc_sale_items i
		JOIN doc_sales s ON s.id = i.sale_id
		WHERE s.status = 'completed'
		  AND s.created_at >= $1 AND s.created_at < $2
		GROUP BY i.product_id, i.product_name, i.product_sku
		ORDER BY quantity_sold DESC, i.product_name ASC
		LIMIT $3
	`

	var items []*reports.BestSeller
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, from, to, limit); err != nil {
		return nil, fmt.Errorf("best sellers: %w", err)
	}

	return items, nil
}

// DailySales buckets completed sales by day within [from, to).
func (r *Repo) DailySales(ctx context.Context, from, to time.Time) ([]*reports.SalesPoint, error) {
	sql := `
		SELECT date_trunc('day', s.created_at) AS period,
		       COUNT(DISTINCT s.id)            AS sales_count,
		       COALESCE(SUM(i.total_price), 0) AS revenue,
		       COALESCE(SUM(i.profit), 0)      AS profit
		FROM doc_sales s
		LEFT JOIN doc_sale_items i ON i.sale_id = s.id
		WHERE s.status = 'completed'
		  AND s.created_at >= $1 AND s.created_at < $2
		GROUP BY period
		ORDER BY period ASC
	`

	var points []*reports.SalesPoint
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &points, sql, from, to); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return points, nil
}

// MonthlySales buckets completed sales by month for one year.
func (r *Repo) MonthlySales(ctx context.Context, year int) ([]*reports.SalesPoint, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	sql := `
		SELECT date_trunc('month', s.created_at) AS period,
		       COUNT(DISTINCT s.id)              AS sales_count,
		       COALESCE(SUM(i.total_price), 0)   AS revenue,
		       COALESCE(SUM(i.profit), 0)        AS profit
		FROM doc_sales s
		LEFT JOIN doc_sale_items i ON i.sale_id = s.id
		WHERE s.status = 'completed'
		  AND s.created_at >= $1 AND s.created_at < $2
		GROUP BY period
		ORDER BY period ASC
	`

	var points []*reports.SalesPoint
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &points, sql, from, to); err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}

	return points, nil
}
