// Package marketdata defines the normalized per-venue observations the
// aggregation pipeline consumes: tickers and public trades. Numeric fields
// are arbitrary-precision decimals; absent fields are explicit, never zero.
package marketdata

import (
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
	"marketstem/internal/num"
)

// Converter resolves an exchange rate for a pair and applies it to an amount.
// It is the one feedback edge from conversion resolution back into ticker
// normalization: inverse tickers without any price fall back to it for volume
// estimation.
type Converter interface {
	Convert(amount decimal.Decimal, pair *asset.Pair) (decimal.Decimal, bool)
}

// Ticker is one venue's snapshot of a market. Each statistic can be absent
// independently.
type Ticker struct {
	Venue     string
	Market    *asset.Pair
	Last      decimal.NullDecimal
	Bid       decimal.NullDecimal
	Ask       decimal.NullDecimal
	High      decimal.NullDecimal
	Low       decimal.NullDecimal
	Volume    decimal.NullDecimal
	Timestamp time.Time
}

// Inverse re-expresses the ticker against the reverse market: prices become
// reciprocals and the volume is re-estimated in the reversed trade asset
// using, in order of preference, the last price, the bid/ask midpoint, or the
// conversion resolver. conv may be nil, in which case the final fallback
// yields an absent volume.
func (t Ticker) Inverse(conv Converter) Ticker {
	inverseVolume := decimal.NullDecimal{}
	if t.Volume.Valid {
		switch {
		case t.Last.Valid:
			inverseVolume = decimal.NewNullDecimal(t.Last.Decimal.Mul(t.Volume.Decimal))
		case t.Bid.Valid && t.Ask.Valid:
			mid := num.Average(t.Bid.Decimal, t.Ask.Decimal)
			inverseVolume = decimal.NewNullDecimal(mid.Mul(t.Volume.Decimal))
		case conv != nil:
			if converted, ok := conv.Convert(t.Volume.Decimal, t.Market); ok {
				inverseVolume = decimal.NewNullDecimal(converted)
			}
		}
	}

	return Ticker{
		Venue:     t.Venue,
		Market:    t.Market.Reverse(),
		Last:      inverseNull(t.Last),
		Bid:       inverseNull(t.Bid),
		Ask:       inverseNull(t.Ask),
		High:      inverseNull(t.High),
		Low:       inverseNull(t.Low),
		Volume:    inverseVolume,
		Timestamp: t.Timestamp,
	}
}

func inverseNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Inverse(d.Decimal))
}
