package depth

import (
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
)

const treeDegree = 8

// Builder accumulates bid and ask levels and produces an immutable Depth.
// Levels are kept in price-ordered trees while building; identical
// (price, amount) entries collapse into one.
type Builder struct {
	venue  string
	market *asset.Pair
	bids   *btree.BTreeG[Order]
	asks   *btree.BTreeG[Order]
}

// NewBuilder starts a depth snapshot for the given venue and market.
func NewBuilder(venue string, market *asset.Pair) *Builder {
	return &Builder{
		venue:  venue,
		market: market,
		// Consume the highest bids and the lowest asks first.
		bids: btree.NewG(treeDegree, func(a, b Order) bool { return a.Compare(b) > 0 }),
		asks: btree.NewG(treeDegree, func(a, b Order) bool { return a.Compare(b) < 0 }),
	}
}

// AddBid records a bid level.
func (b *Builder) AddBid(price, amount decimal.Decimal) *Builder {
	b.bids.ReplaceOrInsert(Order{Amount: amount, Price: price})
	return b
}

// AddAsk records an ask level.
func (b *Builder) AddAsk(price, amount decimal.Decimal) *Builder {
	b.asks.ReplaceOrInsert(Order{Amount: amount, Price: price})
	return b
}

// AddBidStrings parses and records a bid level from wire strings.
func (b *Builder) AddBidStrings(price, amount string) error {
	o, err := parseOrder(price, amount)
	if err != nil {
		return err
	}
	b.bids.ReplaceOrInsert(o)
	return nil
}

// AddAskStrings parses and records an ask level from wire strings.
func (b *Builder) AddAskStrings(price, amount string) error {
	o, err := parseOrder(price, amount)
	if err != nil {
		return err
	}
	b.asks.ReplaceOrInsert(o)
	return nil
}

func parseOrder(price, amount string) (Order, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Order{}, fmt.Errorf("parse level price %q: %w", price, err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return Order{}, fmt.Errorf("parse level amount %q: %w", amount, err)
	}
	return Order{Amount: a, Price: p}, nil
}

// Build freezes the accumulated levels into an immutable snapshot stamped
// with the current time.
func (b *Builder) Build() *Depth {
	d := &Depth{
		venue:     b.venue,
		market:    b.market,
		bids:      make([]Order, 0, b.bids.Len()),
		asks:      make([]Order, 0, b.asks.Len()),
		timestamp: time.Now(),
	}
	b.bids.Ascend(func(o Order) bool {
		d.bids = append(d.bids, o)
		return true
	})
	b.asks.Ascend(func(o Order) bool {
		d.asks = append(d.asks, o)
		return true
	})
	return d
}
