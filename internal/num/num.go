// Package num centralizes the decimal arithmetic used across the market data
// pipeline. Every division goes through Divide so that all derived prices share
// the same scale and rounding behaviour, keeping output comparable across
// instances.
package num

import "github.com/shopspring/decimal"

// DivisionScale is the number of fractional digits kept by intermediate
// divisions (half-even rounded) unless an asset's own scale narrows the final
// presentation.
const DivisionScale int32 = 8

var (
	one = decimal.New(1, 0)
	two = decimal.New(2, 0)
)

// Divide returns a/b rounded half-even to the given scale.
func Divide(a, b decimal.Decimal, scale int32) decimal.Decimal {
	// Carry a few guard digits through the division so the final banker's
	// rounding sees the true digit at the target scale.
	return a.DivRound(b, scale+4).RoundBank(scale)
}

// Inverse returns 1/d at the standard division scale.
func Inverse(d decimal.Decimal) decimal.Decimal {
	return Divide(one, d, DivisionScale)
}

// Average returns the midpoint of a and b at the standard division scale.
func Average(a, b decimal.Decimal) decimal.Decimal {
	return Divide(a.Add(b), two, DivisionScale)
}
