package depth

import (
	"hash/fnv"
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
	"marketstem/internal/num"
)

// Depth is an immutable order book snapshot for one venue and market: bids
// sorted by descending price, asks by ascending price. Build one with a
// Builder; it needs no synchronization afterwards.
type Depth struct {
	venue     string
	market    *asset.Pair
	bids      []Order
	asks      []Order
	timestamp time.Time
}

func (d *Depth) Venue() string       { return d.venue }
func (d *Depth) Market() *asset.Pair { return d.market }
func (d *Depth) Timestamp() time.Time { return d.timestamp }

// Bids returns the bid ladder, best (highest) price first. Callers must not
// modify the returned slice.
func (d *Depth) Bids() []Order { return d.bids }

// Asks returns the ask ladder, best (lowest) price first. Callers must not
// modify the returned slice.
func (d *Depth) Asks() []Order { return d.asks }

// BestBid returns the top bid level, or ok=false on an empty side.
func (d *Depth) BestBid() (Order, bool) {
	if len(d.bids) == 0 {
		return Order{}, false
	}
	return d.bids[0], true
}

// BestAsk returns the top ask level, or ok=false on an empty side.
func (d *Depth) BestAsk() (Order, bool) {
	if len(d.asks) == 0 {
		return Order{}, false
	}
	return d.asks[0], true
}

// SimulateSpend walks the book in price priority, spending amount of the
// given settlement asset. Spending the price asset consumes asks and returns
// the trade-asset quantity acquired; spending the trade asset consumes bids
// and returns the price-asset proceeds.
//
// No partial fills: if the book cannot absorb the full spend amount, ok is
// false and no quantity is reported.
func (d *Depth) SimulateSpend(amount decimal.Decimal, settlement *asset.Asset) (decimal.Decimal, bool) {
	if settlement == d.market.PriceAsset() {
		return d.consumeAsks(amount)
	}
	return d.consumeBids(amount)
}

func (d *Depth) consumeAsks(amountToSpend decimal.Decimal) (decimal.Decimal, bool) {
	filled := decimal.Zero
	remaining := amountToSpend
	for _, level := range d.asks {
		wanted := num.Divide(remaining, level.Price, num.DivisionScale)
		if wanted.GreaterThan(level.Amount) {
			remaining = remaining.Sub(level.Cost())
			filled = filled.Add(level.Amount)
			continue
		}
		return filled.Add(wanted), true
	}
	return decimal.Decimal{}, false
}

func (d *Depth) consumeBids(amountToSpend decimal.Decimal) (decimal.Decimal, bool) {
	filled := decimal.Zero
	remaining := amountToSpend
	for _, level := range d.bids {
		if remaining.GreaterThan(level.Amount) {
			remaining = remaining.Sub(level.Amount)
			filled = filled.Add(level.Cost())
			continue
		}
		return filled.Add(level.CostOf(remaining)), true
	}
	return decimal.Decimal{}, false
}

// Fingerprint sums every bid and ask price into a single scalar. It is a
// cheap "did anything change" hint for deduplication, not a content hash:
// quantities are ignored and unrelated books can collide on the same sum.
func (d *Depth) Fingerprint() decimal.Decimal {
	sum := decimal.Zero
	for _, level := range d.asks {
		sum = sum.Add(level.Price)
	}
	for _, level := range d.bids {
		sum = sum.Add(level.Price)
	}
	return sum
}

// StructuralHash is an opt-in, stronger alternative to Fingerprint covering
// level order, prices and quantities. Callers that want it must ask for it
// explicitly; deduplication defaults to Fingerprint.
func (d *Depth) StructuralHash() uint64 {
	h := fnv.New64a()
	for _, level := range d.bids {
		h.Write([]byte(level.Price.String()))
		h.Write([]byte{'@'})
		h.Write([]byte(level.Amount.String()))
		h.Write([]byte{'|'})
	}
	h.Write([]byte{'/'})
	for _, level := range d.asks {
		h.Write([]byte(level.Price.String()))
		h.Write([]byte{'@'})
		h.Write([]byte(level.Amount.String()))
		h.Write([]byte{'|'})
	}
	return h.Sum64()
}
