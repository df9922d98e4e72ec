// Package depth models per-venue order book snapshots: immutable bid/ask
// ladders with market-order simulation and a cheap change fingerprint used by
// upstream deduplication.
package depth

import "github.com/shopspring/decimal"

// Order is one public limit order level: a tradable amount offered at a limit
// price. Values are immutable once built into a Depth.
type Order struct {
	Amount decimal.Decimal
	Price  decimal.Decimal
}

// Cost returns the price-asset value of consuming the whole level.
func (o Order) Cost() decimal.Decimal {
	return o.Amount.Mul(o.Price)
}

// CostOf returns the price-asset value of consuming amount at this level's
// price.
func (o Order) CostOf(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(o.Price)
}

// Compare orders by limit price, breaking ties by tradable amount.
func (o Order) Compare(other Order) int {
	if c := o.Price.Cmp(other.Price); c != 0 {
		return c
	}
	return o.Amount.Cmp(other.Amount)
}
