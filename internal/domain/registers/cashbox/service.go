package cashbox

import (
	"context"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/pkg/logger"
)

// Entry describes the ledger metadata for one balance mutation.
type Entry struct {
	Type          TransactionType
	Description   string
	ReferenceType string
	ReferenceID   *id.ID
	ExchangeRate  types.Money
	CreatedBy     string
}

// Service mutates the cash ledger.
//
// Credit and Debit are ledger primitives: they perform no transaction
// management of their own and must run inside the caller's transaction, so a
// failed sale or expense rolls the balance change back together with the
// document. Deposit and Withdraw are the standalone manual operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a cashbox service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Credit adds amount to the balance of the given currency and appends the
// ledger entry. Amount must be positive.
func (s *Service) Credit(ctx context.Context, currency types.Currency, amount types.Money, entry Entry) (*CashboxTransaction, error) {
	return s.apply(ctx, currency, amount, entry)
}

// Debit subtracts amount from the balance of the given currency and appends
// the ledger entry. Amount must be positive; a debit exceeding the balance
// fails with INSUFFICIENT_BALANCE and no ledger entry.
func (s *Service) Debit(ctx context.Context, currency types.Currency, amount types.Money, entry Entry) (*CashboxTransaction, error) {
	t, err := s.apply(ctx, currency, amount.Neg(), entry)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) apply(ctx context.Context, currency types.Currency, delta types.Money, entry Entry) (*CashboxTransaction, error) {
	if !currency.Valid() {
		return nil, apperror.NewValidation("unsupported currency").
			WithDetail("field", "currency").
			WithDetail("value", string(currency))
	}
	if !delta.Abs().IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if !ValidTransactionType(entry.Type) {
		return nil, apperror.NewValidation("unknown cashbox transaction type").
			WithDetail("field", "type").
			WithDetail("value", string(entry.Type))
	}

	delta = types.Round2(delta)

	usd, lyd, err := s.repo.AddBalance(ctx, currency, delta)
	if err != nil {
		return nil, err
	}

	t := &CashboxTransaction{
		BaseDocument:    entity.NewBaseDocument(entry.CreatedBy),
		Type:            entry.Type,
		BalanceUSDAfter: usd,
		BalanceLYDAfter: lyd,
		ExchangeRate:    entry.ExchangeRate,
		Description:     entry.Description,
		ReferenceType:   entry.ReferenceType,
		ReferenceID:     entry.ReferenceID,
	}
	if currency == types.CurrencyUSD {
		t.AmountUSD = delta
	} else {
		t.AmountLYD = delta
	}

	if err := s.repo.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "cashbox balance changed",
		"type", string(entry.Type),
		"currency", string(currency),
		"delta", delta.StringFixed(2),
	)

	return t, nil
}

// Deposit records a manual cash deposit in its own transaction.
func (s *Service) Deposit(ctx context.Context, currency types.Currency, amount types.Money, description string) (*CashboxTransaction, error) {
	var out *CashboxTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.Credit(ctx, currency, amount, Entry{
			Type:        TxDeposit,
			Description: description,
			CreatedBy:   appctx.GetUserID(ctx),
		})
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Withdraw records a manual cash withdrawal in its own transaction.
func (s *Service) Withdraw(ctx context.Context, currency types.Currency, amount types.Money, description string) (*CashboxTransaction, error) {
	var out *CashboxTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.Debit(ctx, currency, amount, Entry{
			Type:        TxWithdrawal,
			Description: description,
			CreatedBy:   appctx.GetUserID(ctx),
		})
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Balance returns the current cash position in both currencies.
func (s *Service) Balance(ctx context.Context) (*Cashbox, error) {
	return s.repo.Get(ctx)
}

// Transactions returns ledger history.
func (s *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]*CashboxTransaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListTransactions(ctx, filter)
}
