// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/domain/documents/sale"
	"mdcars/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleItemsTable = "doc_sale_items"
)

// SaleRepo implements sale.Repository. The header and its items are written
// together; reads hydrate items unless the caller asked for headers only.
type SaleRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	headerCols []string
	itemCols   []string
}

// Compile-time check.
var _ sale.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a new sale document repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		headerCols: postgres.ExtractDBColumns[sale.Sale](),
		itemCols:   postgres.ExtractDBColumns[sale.SaleItem](),
	}
}

// Create inserts the header and its items.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	querier := r.txManager.GetQuerier(ctx)

	headerData := postgres.StructToMap(s)
	filtered := make(map[string]any, len(r.headerCols))
	for _, col := range r.headerCols {
		if val, ok := headerData[col]; ok {
			filtered[col] = val
		}
	}

	headerSQL, headerArgs, err := r.builder.Insert(salesTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build header insert: %w", err)
	}

	if _, err := querier.Exec(ctx, headerSQL, headerArgs...); err != nil {
		return fmt.Errorf("insert sale header: %w", err)
	}

	if len(s.Items) == 0 {
		return nil
	}

	q := r.builder.Insert(saleItemsTable).Columns(r.itemCols...)
	for _, item := range s.Items {
		itemData := postgres.StructToMap(item)
		values := make([]any, 0, len(r.itemCols))
		for _, col := range r.itemCols {
			values = append(values, itemData[col])
		}
		q = q.Values(values...)
	}

	itemsSQL, itemsArgs, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := querier.Exec(ctx, itemsSQL, itemsArgs...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}

	return nil
}

// GetByID returns the sale with items hydrated.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"id": saleID}, saleID.String(), "")
}

// GetByNumber returns the sale with items hydrated.
func (r *SaleRepo) GetByNumber(ctx context.Context, saleNumber string) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"sale_number": saleNumber}, saleNumber, "")
}

// GetForUpdate loads the sale and locks the header row for the duration of
// the surrounding transaction.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"id": saleID}, saleID.String(), "FOR UPDATE")
}

func (r *SaleRepo) getOne(ctx context.Context, pred squirrel.Eq, key, suffix string) (*sale.Sale, error) {
	q := r.builder.
		Select(r.headerCols...).
		From(salesTable).
		Where(pred).
		Limit(1)
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sale.Sale
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", key)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.hydrateItems(ctx, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SaleRepo) hydrateItems(ctx context.Context, s *sale.Sale) error {
	q := r.builder.
		Select(r.itemCols...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": s.ID}).
		OrderBy("product_name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &s.Items, sql, args...); err != nil {
		return fmt.Errorf("hydrate sale items: %w", err)
	}

	return nil
}

// UpdateStatus transitions the document status.
func (r *SaleRepo) UpdateStatus(ctx context.Context, saleID id.ID, status sale.Status) error {
	sql := `
		UPDATE doc_sales
		SET status = $1,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $2
	`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, status, saleID)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}

	return nil
}

// List returns sale headers, newest first. Items are not hydrated.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	q := r.builder.
		Select(r.headerCols...).
		From(salesTable).
		OrderBy("created_at DESC")

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
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

	var items []*sale.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return items, nil
}
