package finance

import (
	"context"
	"fmt"
	"time"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/audit"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
	"mdcars/pkg/logger"
)

// Service posts finance operations.
type Service struct {
	repo      Repository
	customers customer.Repository
	partners  partner.Repository
	cash      *cashbox.Service
	numerator numerator.Generator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a finance service.
func NewService(
	repo Repository,
	customers customer.Repository,
	partners partner.Repository,
	cash *cashbox.Service,
	gen numerator.Generator,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		partners:  partners,
		cash:      cash,
		numerator: gen,
		txManager: txManager,
		auditor:   auditor,
	}
}

// --- Expenses ---

// CreateExpense records an expense and debits the cashbox.
func (s *Service) CreateExpense(ctx context.Context, draft ExpenseDraft) (*Expense, error) {
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.NextNumber(ctx, numerator.ExpenseConfig(), time.Now().UTC())
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("operation", "assign expense number")
	}

	actor := appctx.GetUserID(ctx)
	date := draft.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	e := &Expense{
		BaseDocument: entity.NewBaseDocument(actor),
		Number:       number,
		Category:     draft.Category,
		Amount:       types.Round2(draft.Amount),
		Currency:     draft.Currency,
		Description:  draft.Description,
		PersonName:   draft.PersonName,
		Date:         date,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateExpense(ctx, e); err != nil {
			return err
		}

		ref := e.ID
		_, err := s.cash.Debit(ctx, e.Currency, e.Amount, cashbox.Entry{
			Type:          cashbox.TxExpense,
			Description:   fmt.Sprintf("Expense %s: %s", e.Number, e.Category),
			ReferenceType: "expense",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "expense", EntityID: e.ID, Action: audit.ActionCreate, Actor: actor, Changes: e,
	})

	return e, nil
}

// DeleteExpense removes an expense and reverses its cashbox effect with a
// compensating credit. The ledger keeps both entries.
func (s *Service) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	actor := appctx.GetUserID(ctx)

	var e *Expense
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := s.repo.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		e = loaded

		if err := s.repo.DeleteExpense(ctx, expenseID); err != nil {
			return err
		}

		ref := e.ID
		_, err = s.cash.Credit(ctx, e.Currency, e.Amount, cashbox.Entry{
			Type:          cashbox.TxAdjustment,
			Description:   fmt.Sprintf("Reversal of expense %s", e.Number),
			ReferenceType: "expense",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "expense", EntityID: e.ID, Action: audit.ActionDelete, Actor: actor,
		Changes: map[string]any{"number": e.Number, "amount": e.Amount.StringFixed(2)},
	})

	return nil
}

// GetExpense returns one expense.
func (s *Service) GetExpense(ctx context.Context, expenseID id.ID) (*Expense, error) {
	return s.repo.GetExpense(ctx, expenseID)
}

// ListExpenses returns expenses, newest first.
func (s *Service) ListExpenses(ctx context.Context, filter RecordFilter) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

// --- Revenues ---

// CreateRevenue records a non-sale revenue and credits the cashbox.
func (s *Service) CreateRevenue(ctx context.Context, draft RevenueDraft) (*Revenue, error) {
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.NextNumber(ctx, numerator.RevenueConfig(), time.Now().UTC())
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("operation", "assign revenue number")
	}

	actor := appctx.GetUserID(ctx)
	date := draft.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	r := &Revenue{
		BaseDocument: entity.NewBaseDocument(actor),
		Number:       number,
		Source:       draft.Source,
		Amount:       types.Round2(draft.Amount),
		Currency:     draft.Currency,
		Description:  draft.Description,
		Date:         date,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateRevenue(ctx, r); err != nil {
			return err
		}

		ref := r.ID
		_, err := s.cash.Credit(ctx, r.Currency, r.Amount, cashbox.Entry{
			Type:          cashbox.TxRevenue,
			Description:   fmt.Sprintf("Revenue %s: %s", r.Number, r.Source),
			ReferenceType: "revenue",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "revenue", EntityID: r.ID, Action: audit.ActionCreate, Actor: actor, Changes: r,
	})

	return r, nil
}

// DeleteRevenue removes a revenue and reverses its cashbox effect.
func (s *Service) DeleteRevenue(ctx context.Context, revenueID id.ID) error {
	actor := appctx.GetUserID(ctx)

	var r *Revenue
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := s.repo.GetRevenue(ctx, revenueID)
		if err != nil {
			return err
		}
		r = loaded

		if err := s.repo.DeleteRevenue(ctx, revenueID); err != nil {
			return err
		}

		ref := r.ID
		_, err = s.cash.Debit(ctx, r.Currency, r.Amount, cashbox.Entry{
			Type:          cashbox.TxAdjustment,
			Description:   fmt.Sprintf("Reversal of revenue %s", r.Number),
			ReferenceType: "revenue",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "revenue", EntityID: r.ID, Action: audit.ActionDelete, Actor: actor,
		Changes: map[string]any{"number": r.Number, "amount": r.Amount.StringFixed(2)},
	})

	return nil
}

// ListRevenues returns revenues, newest first.
func (s *Service) ListRevenues(ctx context.Context, filter RecordFilter) ([]*Revenue, error) {
	return s.repo.ListRevenues(ctx, filter)
}

// --- Customer payments ---

// RecordCustomerPayment settles part of a customer's debt: the debt shrinks,
// the cash comes in. Payments above the outstanding balance are rejected.
func (s *Service) RecordCustomerPayment(ctx context.Context, customerID id.ID, amount types.Money, currency types.Currency, notes string) (*CustomerPayment, error) {
	if err := validateAmount(amount, currency); err != nil {
		return nil, err
	}
	amount = types.Round2(amount)

	actor := appctx.GetUserID(ctx)

	var p *CustomerPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.customers.GetByID(ctx, customerID)
		if err != nil {
			return err
		}

		if amount.GreaterThan(c.BalanceOwed) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"payment exceeds outstanding balance").
				WithDetail("balance_owed", c.BalanceOwed.StringFixed(2)).
				WithDetail("amount", amount.StringFixed(2))
		}

		if err := s.customers.AddBalanceOwed(ctx, customerID, amount.Neg()); err != nil {
			return err
		}

		p = &CustomerPayment{
			BaseDocument: entity.NewBaseDocument(actor),
			CustomerID:   customerID,
			Amount:       amount,
			Currency:     currency,
			Notes:        notes,
		}
		if err := s.repo.CreatePayment(ctx, p); err != nil {
			return err
		}

		ref := p.ID
		_, err = s.cash.Credit(ctx, currency, amount, cashbox.Entry{
			Type:          cashbox.TxPayment,
			Description:   fmt.Sprintf("Debt payment from %s", c.Name),
			ReferenceType: "customer_payment",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "customer_payment", EntityID: p.ID, Action: audit.ActionCreate, Actor: actor, Changes: p,
	})

	return p, nil
}

// ListCustomerPayments returns payments, optionally for one customer.
func (s *Service) ListCustomerPayments(ctx context.Context, customerID *id.ID, filter RecordFilter) ([]*CustomerPayment, error) {
	return s.repo.ListPayments(ctx, customerID, filter)
}

// --- Partner transactions ---

// RecordPartnerTransaction posts one equity movement: investments credit the
// cashbox, withdrawals and profit distributions debit it. The matching
// partner counter is incremented atomically.
func (s *Service) RecordPartnerTransaction(ctx context.Context, partnerID id.ID, txType PartnerTransactionType, amount types.Money, currency types.Currency, notes string) (*PartnerTransaction, error) {
	if err := validateAmount(amount, currency); err != nil {
		return nil, err
	}
	amount = types.Round2(amount)

	var counterKind partner.CounterKind
	switch txType {
	case PartnerInvestment:
		counterKind = partner.CounterInvested
	case PartnerWithdrawal:
		counterKind = partner.CounterWithdrawn
	case PartnerProfitDistribution:
		counterKind = partner.CounterProfitDistributed
	default:
		return nil, apperror.NewValidation("unknown partner transaction type").
			WithDetail("field", "type").
			WithDetail("value", string(txType))
	}

	actor := appctx.GetUserID(ctx)

	var record *PartnerTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pt, err := s.partners.GetByID(ctx, partnerID)
		if err != nil {
			return err
		}

		record = &PartnerTransaction{
			BaseDocument: entity.NewBaseDocument(actor),
			PartnerID:    partnerID,
			Type:         txType,
			Amount:       amount,
			Currency:     currency,
			Notes:        notes,
		}
		if err := s.repo.CreatePartnerTransaction(ctx, record); err != nil {
			return err
		}

		if err := s.partners.AddCounter(ctx, partnerID, counterKind, amount); err != nil {
			return err
		}

		ref := record.ID
		entry := cashbox.Entry{
			Type:          cashbox.TxPartner,
			ReferenceType: "partner_transaction",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		}

		if txType == PartnerInvestment {
			entry.Description = fmt.Sprintf("Investment from %s", pt.Name)
			_, err = s.cash.Credit(ctx, currency, amount, entry)
		} else {
			entry.Description = fmt.Sprintf("%s to %s", txType, pt.Name)
			_, err = s.cash.Debit(ctx, currency, amount, entry)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "partner_transaction", EntityID: record.ID, Action: audit.ActionCreate, Actor: actor, Changes: record,
	})

	return record, nil
}

// ListPartnerTransactions returns equity movements, optionally per partner.
func (s *Service) ListPartnerTransactions(ctx context.Context, partnerID *id.ID, filter RecordFilter) ([]*PartnerTransaction, error) {
	return s.repo.ListPartnerTransactions(ctx, partnerID, filter)
}

// --- Supplier payables ---

// CreateFromPurchase implements stock.PayableSink: a credit stock-in opens a
// supplier debt inside the purchase transaction.
func (s *Service) CreateFromPurchase(ctx context.Context, purchase stock.PurchasePayable) error {
	movementID := purchase.StockMovementID
	p := &SupplierPayable{
		BaseDocument:    entity.NewBaseDocument(purchase.CreatedBy),
		SupplierName:    purchase.SupplierName,
		Amount:          types.Round2(purchase.Amount),
		Currency:        purchase.Currency,
		InvoiceNumber:   purchase.InvoiceNumber,
		StockMovementID: &movementID,
	}
	return s.repo.CreatePayable(ctx, p)
}

// PayPayable settles a supplier debt: the one-way isPaid transition plus the
// cashbox debit. Paying an already-paid payable conflicts.
func (s *Service) PayPayable(ctx context.Context, payableID id.ID) (*SupplierPayable, error) {
	actor := appctx.GetUserID(ctx)

	var p *SupplierPayable
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := s.repo.GetPayableForUpdate(ctx, payableID)
		if err != nil {
			return err
		}
		if loaded.IsPaid {
			return apperror.NewBusinessRule(apperror.CodePayableAlreadyPaid,
				"supplier payable is already paid").
				WithDetail("payable_id", payableID.String())
		}

		now := time.Now().UTC()
		if err := s.repo.MarkPayablePaid(ctx, payableID, now); err != nil {
			return err
		}
		loaded.IsPaid = true
		loaded.PaidAt = &now

		ref := loaded.ID
		_, err = s.cash.Debit(ctx, loaded.Currency, loaded.Amount, cashbox.Entry{
			Type:          cashbox.TxPayable,
			Description:   fmt.Sprintf("Payment to supplier %s", loaded.SupplierName),
			ReferenceType: "supplier_payable",
			ReferenceID:   &ref,
			CreatedBy:     actor,
		})
		if err != nil {
			return err
		}

		p = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		EntityType: "supplier_payable", EntityID: p.ID, Action: audit.ActionPay, Actor: actor,
		Changes: map[string]any{"supplier": p.SupplierName, "amount": p.Amount.StringFixed(2)},
	})

	logger.Info(ctx, "supplier payable settled",
		"payable_id", p.ID.String(),
		"supplier", p.SupplierName,
		"amount", p.Amount.StringFixed(2),
	)

	return p, nil
}

// ListPayables returns supplier payables.
func (s *Service) ListPayables(ctx context.Context, filter PayableFilter) ([]*SupplierPayable, error) {
	return s.repo.ListPayables(ctx, filter)
}

var _ stock.PayableSink = (*Service)(nil)
