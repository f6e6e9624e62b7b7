// Package treasury provides the safe and bank account sub-ledger.
//
// Treasury accounts are a ledger system separate from the cashbox. The only
// bridge between the two is the explicit cashbox transfer pair, so neither
// ledger can drift through implicit side effects.
package treasury

import (
	"context"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// AccountKind distinguishes physical safes from bank accounts.
type AccountKind string

const (
	KindSafe AccountKind = "safe"
	KindBank AccountKind = "bank"
)

// TreasuryAccount holds dual-currency balances for one safe or bank account.
type TreasuryAccount struct {
	entity.Catalog

	Kind AccountKind `db:"kind" json:"kind"`

	BalanceUSD types.Money `db:"balance_usd" json:"balanceUsd"`
	BalanceLYD types.Money `db:"balance_lyd" json:"balanceLyd"`

	// LinkedAccountID optionally pairs a safe with its bank account.
	LinkedAccountID *id.ID `db:"linked_account_id" json:"linkedAccountId,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewAccount creates an active treasury account with zero balances.
func NewAccount(kind AccountKind, name string) *TreasuryAccount {
	return &TreasuryAccount{
		Catalog:    entity.NewCatalog("", name),
		Kind:       kind,
		BalanceUSD: types.Zero(),
		BalanceLYD: types.Zero(),
		IsActive:   true,
	}
}

// Validate implements entity.Validatable.
func (a *TreasuryAccount) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if a.Kind != KindSafe && a.Kind != KindBank {
		return apperror.NewValidation("unknown treasury account kind").
			WithDetail("field", "kind").
			WithDetail("value", string(a.Kind))
	}

	return nil
}

// Balance returns the balance for the given currency.
func (a *TreasuryAccount) Balance(currency types.Currency) types.Money {
	if currency == types.CurrencyUSD {
		return a.BalanceUSD
	}
	return a.BalanceLYD
}

// EntryType classifies a treasury ledger entry.
type EntryType string

const (
	EntryDeposit     EntryType = "deposit"
	EntryWithdrawal  EntryType = "withdrawal"
	EntryTransferIn  EntryType = "transfer_in"
	EntryTransferOut EntryType = "transfer_out"
	EntryCashboxIn   EntryType = "cashbox_in"
	EntryCashboxOut  EntryType = "cashbox_out"
)

// TreasuryTransaction is one immutable sub-ledger entry. Amount is signed:
// money entering the account is positive.
type TreasuryTransaction struct {
	entity.BaseDocument

	AccountID id.ID     `db:"account_id" json:"accountId"`
	Type      EntryType `db:"type" json:"type"`

	Currency types.Currency `db:"currency" json:"currency"`
	Amount   types.Money    `db:"amount" json:"amount"`

	BalanceAfter types.Money `db:"balance_after" json:"balanceAfter"`

	Description string `db:"description" json:"description"`

	// CounterpartyID is the other account of a transfer pair.
	CounterpartyID *id.ID `db:"counterparty_id" json:"counterpartyId,omitempty"`
}
