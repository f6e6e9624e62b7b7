package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/pkg/logger"
)

// PurchasePayable is the debt created by a credit stock-in.
type PurchasePayable struct {
	SupplierName    string
	Amount          types.Money
	Currency        types.Currency
	InvoiceNumber   string
	StockMovementID id.ID
	CreatedBy       string
}

// PayableSink receives supplier debts created by credit purchases. The
// finance layer implements it; the indirection keeps the register free of a
// dependency on finance internals.
type PayableSink interface {
	CreateFromPurchase(ctx context.Context, p PurchasePayable) error
}

// Service records stock movements.
type Service struct {
	repo      Repository
	cash      *cashbox.Service
	payables  PayableSink
	txManager tx.Manager
}

// NewService creates a stock register service.
func NewService(repo Repository, cash *cashbox.Service, payables PayableSink, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		cash:      cash,
		payables:  payables,
		txManager: txManager,
	}
}

// Record applies one stock movement in a single transaction: the guarded
// stock update, the immutable register row, and any funding side effect
// (cashbox debit for cash purchases, supplier payable for credit purchases).
// A stock-out exceeding the available stock fails the whole operation with
// INSUFFICIENT_STOCK and no partial write.
func (s *Service) Record(ctx context.Context, req MovementRequest) (*StockMovement, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	var movement *StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var prev, next int64
		var err error

		switch req.Type {
		case MovementIn:
			next, err = s.repo.ApplyDelta(ctx, req.ProductID, req.Quantity)
			prev = next - req.Quantity
		case MovementOut:
			next, err = s.repo.ApplyDelta(ctx, req.ProductID, -req.Quantity)
			prev = next + req.Quantity
		case MovementAdjustment:
			prev, err = s.repo.SetStock(ctx, req.ProductID, req.Quantity)
			next = req.Quantity
		}
		if err != nil {
			return err
		}

		m := &StockMovement{
			BaseDocument:  entity.NewBaseDocument(appctx.GetUserID(ctx)),
			ProductID:     req.ProductID,
			Type:          req.Type,
			Quantity:      req.Quantity,
			PreviousStock: prev,
			NewStock:      next,
			CostPerUnit:   req.CostPerUnit,
			Reason:        req.Reason,
			PurchaseType:  req.PurchaseType,
			Currency:      req.Currency,
			SupplierName:  req.SupplierName,
			InvoiceNumber: req.InvoiceNumber,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
		}

		if err := s.repo.Append(ctx, m); err != nil {
			return err
		}

		if req.Type == MovementIn && req.PurchaseType != "" {
			if err := s.recordPurchaseFunding(ctx, m); err != nil {
				return err
			}
		}

		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement recorded",
		"movement_id", movement.ID.String(),
		"product_id", movement.ProductID.String(),
		"type", string(movement.Type),
		"quantity", movement.Quantity,
		"new_stock", movement.NewStock,
	)

	return movement, nil
}

// recordPurchaseFunding posts the money side of a stock-in: cash purchases
// debit the cashbox, credit purchases open a supplier payable.
func (s *Service) recordPurchaseFunding(ctx context.Context, m *StockMovement) error {
	total := types.Round2(m.CostPerUnit.Mul(decimal.NewFromInt(m.Quantity)))

	if m.PurchaseType == PurchaseCredit {
		return s.payables.CreateFromPurchase(ctx, PurchasePayable{
			SupplierName:    m.SupplierName,
			Amount:          total,
			Currency:        m.Currency,
			InvoiceNumber:   m.InvoiceNumber,
			StockMovementID: m.ID,
			CreatedBy:       m.CreatedBy,
		})
	}

	movementID := m.ID
	_, err := s.cash.Debit(ctx, m.Currency, total, cashbox.Entry{
		Type:          cashbox.TxPurchase,
		Description:   fmt.Sprintf("Stock purchase: %s x%d", m.SupplierName, m.Quantity),
		ReferenceType: "stock_movement",
		ReferenceID:   &movementID,
		CreatedBy:     m.CreatedBy,
	})
	return err
}

// Get returns one movement.
func (s *Service) Get(ctx context.Context, movementID id.ID) (*StockMovement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// History returns movement history, newest first.
func (s *Service) History(ctx context.Context, filter MovementFilter) ([]*StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// ProductHistory returns the movement history of one product.
func (s *Service) ProductHistory(ctx context.Context, productID id.ID, limit, offset int) ([]*StockMovement, error) {
	return s.History(ctx, MovementFilter{ProductID: &productID, Limit: limit, Offset: offset})
}
