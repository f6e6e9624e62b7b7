// Package cashbox provides the dual-currency cash ledger.
//
// The cashbox is a single row holding one LYD and one USD balance. Every
// balance change appends an immutable CashboxTransaction, so the transaction
// log replays to the current balances.
package cashbox

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// Cashbox is the singleton cash position.
type Cashbox struct {
	entity.BaseEntity

	BalanceUSD types.Money `db:"balance_usd" json:"balanceUsd"`
	BalanceLYD types.Money `db:"balance_lyd" json:"balanceLyd"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Balance returns the balance for the given currency.
func (c *Cashbox) Balance(currency types.Currency) types.Money {
	if currency == types.CurrencyUSD {
		return c.BalanceUSD
	}
	return c.BalanceLYD
}

// TransactionType classifies a cashbox ledger entry.
type TransactionType string

const (
	TxSale       TransactionType = "sale"
	TxRefund     TransactionType = "refund"
	TxPurchase   TransactionType = "purchase"
	TxExpense    TransactionType = "expense"
	TxRevenue    TransactionType = "revenue"
	TxPayment    TransactionType = "payment"
	TxPartner    TransactionType = "partner"
	TxPayable    TransactionType = "payable"
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxAdjustment TransactionType = "adjustment"
)

// ValidTransactionType reports whether t is a known ledger entry type.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxSale, TxRefund, TxPurchase, TxExpense, TxRevenue, TxPayment,
		TxPartner, TxPayable, TxDeposit, TxWithdrawal, TxAdjustment:
		return true
	}
	return false
}

// CashboxTransaction is one immutable ledger entry. Amounts are signed:
// credits positive, debits negative. Exactly one of the two amount columns is
// non-zero per entry.
type CashboxTransaction struct {
	entity.BaseDocument

	Type TransactionType `db:"type" json:"type"`

	AmountUSD types.Money `db:"amount_usd" json:"amountUsd"`
	AmountLYD types.Money `db:"amount_lyd" json:"amountLyd"`

	// Balance snapshots after this entry was applied.
	BalanceUSDAfter types.Money `db:"balance_usd_after" json:"balanceUsdAfter"`
	BalanceLYDAfter types.Money `db:"balance_lyd_after" json:"balanceLydAfter"`

	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	Description   string `db:"description" json:"description"`
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   *id.ID `db:"reference_id" json:"referenceId,omitempty"`
}

// Validate implements entity.Validatable.
func (t *CashboxTransaction) Validate(ctx context.Context) error {
	if !ValidTransactionType(t.Type) {
		return apperror.NewValidation("unknown cashbox transaction type").
			WithDetail("field", "type").
			WithDetail("value", string(t.Type))
	}

	if t.AmountUSD.IsZero() && t.AmountLYD.IsZero() {
		return apperror.NewValidation("cashbox transaction amount must not be zero")
	}

	return nil
}
