package treasury

import (
	"context"
	"fmt"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/pkg/logger"
)

// Service manages safe and bank accounts.
type Service struct {
	repo      Repository
	cash      *cashbox.Service
	txManager tx.Manager
}

// NewService creates a treasury service.
func NewService(repo Repository, cash *cashbox.Service, txManager tx.Manager) *Service {
	return &Service{repo: repo, cash: cash, txManager: txManager}
}

// CreateAccount registers a new safe or bank account.
func (s *Service) CreateAccount(ctx context.Context, a *TreasuryAccount) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateAccount(ctx, a)
	})
}

// GetAccount returns one account.
func (s *Service) GetAccount(ctx context.Context, accountID id.ID) (*TreasuryAccount, error) {
	return s.repo.GetAccount(ctx, accountID)
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts(ctx context.Context, activeOnly bool) ([]*TreasuryAccount, error) {
	return s.repo.ListAccounts(ctx, activeOnly)
}

// Deposit adds funds to an account in its own transaction.
func (s *Service) Deposit(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) (*TreasuryTransaction, error) {
	var out *TreasuryTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.apply(ctx, accountID, EntryDeposit, currency, amount, description, nil)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Withdraw removes funds from an account in its own transaction.
func (s *Service) Withdraw(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) (*TreasuryTransaction, error) {
	var out *TreasuryTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.apply(ctx, accountID, EntryWithdrawal, currency, amount.Neg(), description, nil)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Transfer moves funds between two treasury accounts, writing exactly one
// out entry and one in entry inside a single transaction.
func (s *Service) Transfer(ctx context.Context, fromID, toID id.ID, currency types.Currency, amount types.Money, description string) error {
	if fromID == toID {
		return apperror.NewValidation("transfer requires two distinct accounts").
			WithDetail("field", "toAccountId")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.apply(ctx, fromID, EntryTransferOut, currency, amount.Neg(), description, &toID); err != nil {
			return err
		}
		if _, err := s.apply(ctx, toID, EntryTransferIn, currency, amount, description, &fromID); err != nil {
			return err
		}

		logger.Info(ctx, "treasury transfer",
			"from", fromID.String(),
			"to", toID.String(),
			"currency", string(currency),
			"amount", amount.StringFixed(2),
		)
		return nil
	})
}

// MoveFromCashbox withdraws cash from the cashbox and deposits it into a
// treasury account as one paired transaction.
func (s *Service) MoveFromCashbox(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		accountRef := accountID
		if _, err := s.cash.Debit(ctx, currency, amount, cashbox.Entry{
			Type:          cashbox.TxWithdrawal,
			Description:   fmt.Sprintf("Transfer to treasury: %s", description),
			ReferenceType: "treasury_account",
			ReferenceID:   &accountRef,
			CreatedBy:     appctx.GetUserID(ctx),
		}); err != nil {
			return err
		}

		_, err := s.apply(ctx, accountID, EntryCashboxIn, currency, amount, description, nil)
		return err
	})
}

// MoveToCashbox withdraws from a treasury account and deposits the amount
// into the cashbox as one paired transaction.
func (s *Service) MoveToCashbox(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.apply(ctx, accountID, EntryCashboxOut, currency, amount.Neg(), description, nil); err != nil {
			return err
		}

		accountRef := accountID
		_, err := s.cash.Credit(ctx, currency, amount, cashbox.Entry{
			Type:          cashbox.TxDeposit,
			Description:   fmt.Sprintf("Transfer from treasury: %s", description),
			ReferenceType: "treasury_account",
			ReferenceID:   &accountRef,
			CreatedBy:     appctx.GetUserID(ctx),
		})
		return err
	})
}

// Transactions returns sub-ledger history for one account.
func (s *Service) Transactions(ctx context.Context, accountID id.ID, filter EntryFilter) ([]*TreasuryTransaction, error) {
	filter.AccountID = &accountID
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListTransactions(ctx, filter)
}

// apply posts one signed balance change plus its ledger entry. Callers hold
// the transaction.
func (s *Service) apply(ctx context.Context, accountID id.ID, entryType EntryType, currency types.Currency, delta types.Money, description string, counterparty *id.ID) (*TreasuryTransaction, error) {
	if !currency.Valid() {
		return nil, apperror.NewValidation("unsupported currency").
			WithDetail("field", "currency").
			WithDetail("value", string(currency))
	}
	if !delta.Abs().IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	delta = types.Round2(delta)

	after, err := s.repo.AddBalance(ctx, accountID, currency, delta)
	if err != nil {
		return nil, err
	}

	t := &TreasuryTransaction{
		BaseDocument:   entity.NewBaseDocument(appctx.GetUserID(ctx)),
		AccountID:      accountID,
		Type:           entryType,
		Currency:       currency,
		Amount:         delta,
		BalanceAfter:   after,
		Description:    description,
		CounterpartyID: counterparty,
	}
	if err := s.repo.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}
