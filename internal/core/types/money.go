// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"

	"mdcars/internal/core/apperror"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; all balance
// arithmetic must go through this type, never float64.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a decimal string.
// This is the preferred constructor: amounts cross the API boundary
// as base-10 strings with 2 fraction digits.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to 2 fraction digits, the storage precision for all balances.
func Round2(m Money) Money {
	return m.Round(2)
}

// FormatMoney renders a Money value as a 2-fraction-digit decimal string,
// the wire and storage representation for every amount.
func FormatMoney(m Money) string {
	return m.StringFixed(2)
}

// ParseAmount parses a monetary amount from its wire representation and
// normalizes it to 2 fraction digits.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewValidation("invalid amount").
			WithDetail("value", s)
	}
	return d.Round(2), nil
}

// MaxZero clamps a Money value at zero from below.
func MaxZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// Currency is the set of currencies the ledgers track.
// Exactly LYD and USD are supported.
type Currency string

const (
	CurrencyLYD Currency = "LYD"
	CurrencyUSD Currency = "USD"
)

// Valid reports whether the currency is one of the supported values.
func (c Currency) Valid() bool {
	return c == CurrencyLYD || c == CurrencyUSD
}

// ParseCurrency validates and converts a currency string.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", apperror.NewValidation("unsupported currency").
			WithDetail("field", "currency").
			WithDetail("value", s)
	}
	return c, nil
}
