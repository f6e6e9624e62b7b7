package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/audit"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
	"mdcars/pkg/logger"
)

// Service posts sale documents and their ledger effects.
type Service struct {
	repo      Repository
	products  product.Repository
	customers customer.Repository
	stock     *stock.Service
	cash      *cashbox.Service
	numerator numerator.Generator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates the sale engine.
func NewService(
	repo Repository,
	products product.Repository,
	customers customer.Repository,
	stockSvc *stock.Service,
	cash *cashbox.Service,
	gen numerator.Generator,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		customers: customers,
		stock:     stockSvc,
		cash:      cash,
		numerator: gen,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Create posts a new sale. The document, its stock-out movements, the
// customer debt and the cashbox credit are written in one transaction;
// failure anywhere leaves no trace. The sale number is issued before the
// transaction from a strict day-reset sequence, so a rolled-back sale may
// leave a gap but two sales can never share a number.
func (s *Service) Create(ctx context.Context, draft Draft) (*Sale, error) {
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	number, err := s.numerator.NextNumber(ctx, numerator.SaleConfig(), now)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("operation", "assign sale number")
	}

	actor := appctx.GetUserID(ctx)

	var doc *Sale
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if draft.CustomerID != nil {
			if _, err := s.customers.GetByID(ctx, *draft.CustomerID); err != nil {
				return err
			}
		}

		doc = &Sale{
			BaseDocument:  entity.NewBaseDocument(actor),
			SaleNumber:    number,
			CustomerID:    draft.CustomerID,
			Discount:      types.Round2(draft.Discount),
			AmountPaid:    types.Round2(draft.AmountPaid),
			PaymentMethod: draft.PaymentMethod,
			Currency:      draft.Currency,
			ExchangeRate:  draft.ExchangeRate,
			Status:        StatusCompleted,
			Notes:         draft.Notes,
		}

		subtotal := types.Zero()
		for _, di := range draft.Items {
			p, err := s.products.GetByID(ctx, di.ProductID)
			if err != nil {
				return err
			}

			qty := decimal.NewFromInt(di.Quantity)
			lineTotal := types.Round2(di.UnitPrice.Mul(qty))
			item := &SaleItem{
				BaseEntity:  entity.NewBaseEntity(),
				SaleID:      doc.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU(),
				Quantity:    di.Quantity,
				UnitPrice:   types.Round2(di.UnitPrice),
				CostPrice:   p.CostPrice,
				TotalPrice:  lineTotal,
				Profit:      types.Round2(di.UnitPrice.Sub(p.CostPrice).Mul(qty)),
			}
			doc.Items = append(doc.Items, item)
			subtotal = subtotal.Add(lineTotal)
		}

		doc.Subtotal = subtotal
		doc.TotalAmount = subtotal.Sub(doc.Discount)
		doc.AmountDue = types.MaxZero(doc.TotalAmount.Sub(doc.AmountPaid))

		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}

		saleRef := doc.ID
		for _, item := range doc.Items {
			if _, err := s.stock.Record(ctx, stock.MovementRequest{
				ProductID:     item.ProductID,
				Type:          stock.MovementOut,
				Quantity:      item.Quantity,
				Reason:        "Sale",
				ReferenceType: "sale",
				ReferenceID:   &saleRef,
			}); err != nil {
				return err
			}
		}

		if doc.CustomerID != nil {
			if doc.AmountDue.IsPositive() {
				if err := s.customers.AddBalanceOwed(ctx, *doc.CustomerID, doc.AmountDue); err != nil {
					return err
				}
			}
			if err := s.customers.AddPurchases(ctx, *doc.CustomerID, doc.TotalAmount); err != nil {
				return err
			}
		}

		if doc.AmountPaid.IsPositive() {
			if _, err := s.cash.Credit(ctx, doc.Currency, doc.AmountPaid, cashbox.Entry{
				Type:          cashbox.TxSale,
				Description:   fmt.Sprintf("Sale %s", doc.SaleNumber),
				ReferenceType: "sale",
				ReferenceID:   &saleRef,
				ExchangeRate:  doc.ExchangeRate,
				CreatedBy:     actor,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "sale",
		EntityID:   doc.ID,
		Action:     audit.ActionCreate,
		Actor:      actor,
		Changes:    doc,
	})

	logger.Info(ctx, "sale posted",
		"sale_number", doc.SaleNumber,
		"total", doc.TotalAmount.StringFixed(2),
		"currency", string(doc.Currency),
		"items", len(doc.Items),
	)

	return doc, nil
}

// Return reverses a completed sale in full: stock back in, cash refunded,
// customer totals unwound. The sale row is locked for the check-then-update,
// so a second concurrent return fails with SALE_NOT_RETURNABLE.
func (s *Service) Return(ctx context.Context, saleID id.ID) (*Sale, error) {
	actor := appctx.GetUserID(ctx)

	var doc *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if loaded.Status != StatusCompleted {
			return apperror.NewSaleNotReturnable(loaded.SaleNumber, string(loaded.Status))
		}

		if err := s.repo.UpdateStatus(ctx, loaded.ID, StatusReturned); err != nil {
			return err
		}
		loaded.Status = StatusReturned

		saleRef := loaded.ID
		for _, item := range loaded.Items {
			if _, err := s.stock.Record(ctx, stock.MovementRequest{
				ProductID:     item.ProductID,
				Type:          stock.MovementIn,
				Quantity:      item.Quantity,
				Reason:        fmt.Sprintf("Return - Sale %s", loaded.SaleNumber),
				ReferenceType: "sale_return",
				ReferenceID:   &saleRef,
			}); err != nil {
				return err
			}
		}

		if loaded.AmountPaid.IsPositive() {
			if _, err := s.cash.Debit(ctx, loaded.Currency, loaded.AmountPaid, cashbox.Entry{
				Type:          cashbox.TxRefund,
				Description:   fmt.Sprintf("Refund - Sale %s", loaded.SaleNumber),
				ReferenceType: "sale_return",
				ReferenceID:   &saleRef,
				ExchangeRate:  loaded.ExchangeRate,
				CreatedBy:     actor,
			}); err != nil {
				return err
			}
		}

		if loaded.CustomerID != nil {
			if err := s.customers.ReverseSaleTotals(ctx, *loaded.CustomerID, loaded.AmountDue, loaded.TotalAmount); err != nil {
				return err
			}
		}

		doc = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "sale",
		EntityID:   doc.ID,
		Action:     audit.ActionReturn,
		Actor:      actor,
		Changes:    map[string]any{"sale_number": doc.SaleNumber, "status": string(doc.Status)},
	})

	logger.Info(ctx, "sale returned", "sale_number", doc.SaleNumber)

	return doc, nil
}

// Cancel voids a sale that has no posted ledger effects. Completed sales
// carry stock, cash and customer effects and must go through Return instead.
func (s *Service) Cancel(ctx context.Context, saleID id.ID) (*Sale, error) {
	actor := appctx.GetUserID(ctx)

	var doc *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		switch loaded.Status {
		case StatusPending:
			if err := s.repo.UpdateStatus(ctx, loaded.ID, StatusCancelled); err != nil {
				return err
			}
			loaded.Status = StatusCancelled
			doc = loaded
			return nil
		case StatusCompleted:
			return apperror.NewConflict("completed sale has posted effects; use return instead").
				WithDetail("sale_number", loaded.SaleNumber)
		default:
			return apperror.NewConflict("sale is already finalized").
				WithDetail("sale_number", loaded.SaleNumber).
				WithDetail("status", string(loaded.Status))
		}
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "sale",
		EntityID:   doc.ID,
		Action:     audit.ActionCancel,
		Actor:      actor,
		Changes:    map[string]any{"sale_number": doc.SaleNumber},
	})

	return doc, nil
}

// Get returns a sale with items hydrated.
func (s *Service) Get(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// GetByNumber returns a sale by its document number.
func (s *Service) GetByNumber(ctx context.Context, saleNumber string) (*Sale, error) {
	return s.repo.GetByNumber(ctx, saleNumber)
}

// List returns sale headers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
