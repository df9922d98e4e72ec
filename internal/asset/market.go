package asset

import (
	"errors"
	"fmt"
	"strings"
)

// Side tags which side of the book a conversion consumes.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "BID"
	}
	return "ASK"
}

// ErrSameAsset is returned when a market would relate an asset to itself.
var ErrSameAsset = errors.New("market source and destination assets must differ")

// Market is a directional conversion relation derived from a trade intent:
// convert sourceAsset into destinationAsset, priced in priceAsset. Unlike
// Pair, markets are plain values constructed on demand.
type Market struct {
	source      *Asset
	destination *Asset
	price       *Asset
	trade       *Asset
	side        Side
	pair        *Pair
}

// Market builds a directional market. It fails when source and destination
// are the same asset: such a relation is logically impossible and callers
// must not receive a half-built value.
func (r *Registry) Market(source, destination, price *Asset) (*Market, error) {
	if source == destination {
		return nil, fmt.Errorf("%w: %s", ErrSameAsset, source)
	}
	m := &Market{source: source, destination: destination, price: price}
	if price == source {
		m.trade = destination
		m.side = Bid
	} else {
		m.trade = source
		m.side = Ask
	}
	m.pair = r.Pair(m.trade, price)
	return m, nil
}

// MarketFromSymbols resolves the three symbols and builds the market.
func (r *Registry) MarketFromSymbols(source, destination, price string) (*Market, error) {
	return r.Market(r.Asset(source), r.Asset(destination), r.Asset(price))
}

// ParseMarket parses the "SOURCE_DESTINATION_PRICE" form.
func (r *Registry) ParseMarket(s string) (*Market, error) {
	parts := strings.Split(s, PairDelimiter)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed market string %q", s)
	}
	return r.MarketFromSymbols(parts[0], parts[1], parts[2])
}

// Reverse returns the market converting in the opposite direction, priced in
// the same asset.
func (m *Market) Reverse() *Market {
	rev, _ := m.pair.reg.Market(m.destination, m.source, m.price)
	return rev
}

func (m *Market) SourceAsset() *Asset      { return m.source }
func (m *Market) DestinationAsset() *Asset { return m.destination }
func (m *Market) PriceAsset() *Asset       { return m.price }
func (m *Market) TradeAsset() *Asset       { return m.trade }
func (m *Market) Side() Side               { return m.side }

// Pair returns the canonical (trade, price) pair behind this market.
func (m *Market) Pair() *Pair { return m.pair }

func (m *Market) String() string {
	return m.source.symbol + PairDelimiter + m.destination.symbol + PairDelimiter + m.price.symbol
}
