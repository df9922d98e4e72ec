package marketdata

import (
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
)

// Trade is a single public trade reported by a venue.
type Trade struct {
	Venue     string
	ID        string
	Market    *asset.Pair
	Amount    decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
}

// NewTrade normalizes a venue trade record: a missing id becomes "0" and a
// zero timestamp becomes the ingestion time.
func NewTrade(venue, id string, market *asset.Pair, amount, price decimal.Decimal, ts time.Time) Trade {
	if id == "" {
		id = "0"
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	return Trade{Venue: venue, ID: id, Market: market, Amount: amount, Price: price, Timestamp: ts}
}

// Cost returns the price-asset value of the trade.
func (t Trade) Cost() decimal.Decimal {
	return t.Amount.Mul(t.Price)
}
