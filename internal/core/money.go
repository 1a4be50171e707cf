// Package core holds the ledger domain: entities, monetary amounts and the
// pure aggregation functions the dashboard and daily reports are built on.
//
// This file contains amount parsing and formatting. Amounts are exact
// decimals with a fixed 2-digit scale; binary floating point never touches
// money anywhere in the module.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts non-negative decimals with at most 2 fractional digits and
// rejects everything else: signs, exponents, more than 2 decimals, empty
// input. The comma decimal separator is normalized to a dot.
//
// Examples:
//
//	ParseAmount("156.75") -> 156.75, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("0")      -> 0.00, nil
//	ParseAmount("-5")     -> error
//	ParseAmount("1.005")  -> error (3 fractional digits)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks the magnitude and scale invariants: non-negative,
// at most 2 fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount in its wire form: a decimal string with
// exactly 2 fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
