package domain

import "github.com/shopspring/decimal"

// Amounts cross the wire as JSON numbers but are stored as minor-unit
// integers. Conversion goes through decimal arithmetic so that values
// like 19.99 survive the round trip without float drift.

// CentsFromAmount converts a major-unit amount to minor units,
// rounding half-up at two fractional digits.
func CentsFromAmount(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// AmountFromCents converts minor units back to a major-unit amount.
func AmountFromCents(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}
