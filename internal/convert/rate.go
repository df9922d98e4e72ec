// Package convert resolves exchange rates between arbitrary asset pairs from
// live aggregate market data, searching through proxy assets when no market
// links the pair directly.
package convert

import (
	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
	"marketstem/internal/num"
)

var one = decimal.NewFromInt(1)

// identityVolume marks rates that carry no market liquidity of their own,
// such as the identity rate of an asset against itself.
var identityVolume = decimal.NewFromInt(-1)

// Rate is a directed exchange rate: one unit of From buys Rate units of To.
// Volume is the backing market liquidity denominated in From units; it is
// negative for synthetic rates with no market behind them and zero for
// composed proxy rates.
type Rate struct {
	From   *asset.Asset
	To     *asset.Asset
	Rate   decimal.Decimal
	Volume decimal.Decimal
}

// Reverse flips the rate's direction. The reciprocal rate keeps the division
// scale of all other derived prices, and the volume is re-denominated into
// the new From asset.
func (r Rate) Reverse() Rate {
	return Rate{
		From:   r.To,
		To:     r.From,
		Rate:   num.Inverse(r.Rate),
		Volume: r.Volume.Mul(r.Rate),
	}
}

// Convert applies the rate to an amount denominated in the given asset. An
// amount in From multiplies by the rate; an amount in To divides by it. A
// non-positive rate cannot be divided through and converts to zero.
func (r Rate) Convert(amount decimal.Decimal, from *asset.Asset) decimal.Decimal {
	if from == r.From {
		return amount.Mul(r.Rate)
	}
	if r.Rate.IsPositive() {
		return num.Divide(amount, r.Rate, num.DivisionScale)
	}
	return decimal.Zero
}

// NormalizedVolume expresses the backing volume in the given asset's units.
func (r Rate) NormalizedVolume(a *asset.Asset) decimal.Decimal {
	if a == r.To {
		return r.Volume.Mul(r.Rate)
	}
	return r.Volume
}

// compose chains a source-to-proxy rate with a proxy-to-destination rate.
// The result carries no volume of its own.
func compose(from, to Rate) Rate {
	through := from.Convert(one, from.From)
	return Rate{
		From:   from.From,
		To:     to.To,
		Rate:   to.Convert(through, to.From),
		Volume: decimal.Zero,
	}
}

func identity(a *asset.Asset) Rate {
	return Rate{From: a, To: a, Rate: one, Volume: identityVolume}
}
