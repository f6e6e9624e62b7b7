// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"time"
)

// ResetPeriod controls when the sequence restarts from 1.
type ResetPeriod string

const (
	ResetDaily ResetPeriod = "day"
	ResetNever ResetPeriod = "never"
)

// Config holds numbering configuration for one document family.
type Config struct {
	// Prefix added to all numbers (e.g. "MD", "EXP", "REV", "SKU")
	Prefix string

	// IncludeDate embeds the yyyymmdd business date in the number
	IncludeDate bool

	// PadWidth is the zero-padded counter width (default 5)
	PadWidth int

	// ResetPeriod: day or never
	ResetPeriod ResetPeriod
}

// SaleConfig returns the numbering scheme for sale documents:
// MD-{YYYY}{MM}{DD}-{NNNN}, counter resets daily.
func SaleConfig() Config {
	return Config{Prefix: "MD", IncludeDate: true, PadWidth: 4, ResetPeriod: ResetDaily}
}

// ExpenseConfig returns the numbering scheme for expenses: EXP-{NNNNN}.
func ExpenseConfig() Config {
	return Config{Prefix: "EXP", PadWidth: 5, ResetPeriod: ResetNever}
}

// RevenueConfig returns the numbering scheme for revenues: REV-{NNNNN}.
func RevenueConfig() Config {
	return Config{Prefix: "REV", PadWidth: 5, ResetPeriod: ResetNever}
}

// SKUConfig returns the numbering scheme for product SKUs: SKU-{NNNNN}.
func SKUConfig() Config {
	return Config{Prefix: "SKU", PadWidth: 5, ResetPeriod: ResetNever}
}

// CustomerConfig returns the numbering scheme for customer codes: CUS-{NNNNN}.
func CustomerConfig() Config {
	return Config{Prefix: "CUS", PadWidth: 5, ResetPeriod: ResetNever}
}

// PartnerConfig returns the numbering scheme for partner codes: PRT-{NNNNN}.
func PartnerConfig() Config {
	return Config{Prefix: "PRT", PadWidth: 5, ResetPeriod: ResetNever}
}

// Key builds the sequence key for the config and business date. Daily-reset
// sequences get one counter row per day.
func (c Config) Key(period time.Time) string {
	if c.ResetPeriod == ResetDaily {
		return fmt.Sprintf("%s_%s", c.Prefix, period.Format("20060102"))
	}
	return c.Prefix
}

// Format renders the final number string for a counter value.
func (c Config) Format(period time.Time, num int64) string {
	padWidth := c.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if c.IncludeDate {
		return fmt.Sprintf("%s-%s-%0*d", c.Prefix, period.Format("20060102"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, padWidth, num)
}
