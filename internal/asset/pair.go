package asset

// Pair is an ordered (trade asset, price asset) market: the price of one unit
// of the trade asset denominated in the price asset. Pairs are interned per
// Registry; a pair and its reverse have distinct identity.
type Pair struct {
	trade *Asset
	price *Asset
	reg   *Registry
}

// TradeAsset returns the asset being priced.
func (p *Pair) TradeAsset() *Asset { return p.trade }

// PriceAsset returns the asset the price is denominated in.
func (p *Pair) PriceAsset() *Asset { return p.price }

// Reverse returns the interned mirror pair.
func (p *Pair) Reverse() *Pair {
	return p.reg.Pair(p.price, p.trade)
}

// Contains reports whether the pair includes the given asset.
func (p *Pair) Contains(a *Asset) bool {
	return p.trade == a || p.price == a
}

// OtherAsset returns the pair component that is not the given asset. If the
// asset is not part of the pair, the trade asset is returned.
func (p *Pair) OtherAsset(a *Asset) *Asset {
	if p.trade == a {
		return p.price
	}
	return p.trade
}

// String renders the canonical "TRADE_PRICE" form. Round-trips through
// Registry.ParsePair.
func (p *Pair) String() string {
	return p.trade.symbol + PairDelimiter + p.price.symbol
}

// DirectionlessKey returns a canonical identifier shared by a pair and its
// reverse, chosen by comparing the two symbols at the first differing
// character (shorter prefix wins on a full prefix match).
func (p *Pair) DirectionlessKey() string {
	ts, ps := p.trade.symbol, p.price.symbol
	limit := len(ts)
	if len(ps) < limit {
		limit = len(ps)
	}
	for i := 0; i < limit; i++ {
		if ts[i] == ps[i] {
			continue
		}
		if ts[i] < ps[i] {
			return p.String()
		}
		return p.Reverse().String()
	}
	if len(ts) <= len(ps) {
		return p.String()
	}
	return p.Reverse().String()
}
