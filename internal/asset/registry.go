package asset

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// PairDelimiter is the canonical separator in market strings ("BTC_USD").
const PairDelimiter = "_"

// Registry owns the interned asset and pair instances for one process (or one
// test case). It is safe for concurrent use.
type Registry struct {
	logger *zap.Logger

	mu      sync.RWMutex
	assets  map[string]*Asset
	aliases map[string]string
	byType  map[Type][]*Asset
	pairs   map[pairKey]*Pair
	byAsset map[*Asset][]*Pair
}

type pairKey struct {
	trade string
	price string
}

// NewRegistry creates a registry seeded with the known fiat and digital
// symbol tables.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger:  logger,
		assets:  make(map[string]*Asset),
		aliases: make(map[string]string),
		byType:  make(map[Type][]*Asset),
		pairs:   make(map[pairKey]*Pair),
		byAsset: make(map[*Asset][]*Pair),
	}
	for code, scale := range fiatScales {
		r.add(&Asset{symbol: code, typ: Fiat, scale: scale})
	}
	for alias, canonical := range fiatAliases {
		r.aliases[alias] = canonical
	}
	for _, seed := range digitalSeeds {
		r.add(&Asset{symbol: seed.symbol, typ: Digital, scale: seed.scale})
		for _, alias := range seed.aliases {
			r.aliases[alias] = seed.symbol
		}
	}
	return r
}

// add registers a new asset. Caller must hold no lock (construction) or the
// write lock.
func (r *Registry) add(a *Asset) {
	r.assets[a.symbol] = a
	r.byType[a.typ] = append(r.byType[a.typ], a)
}

// Asset returns the interned asset for the given symbol or alias, creating a
// Digital asset with the default scale of 8 when the symbol is unknown.
func (r *Registry) Asset(symbol string) *Asset {
	canonical := strings.ToUpper(symbol)

	r.mu.RLock()
	if target, ok := r.aliases[canonical]; ok {
		canonical = target
	}
	a, ok := r.assets[canonical]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok = r.assets[canonical]; ok {
		return a
	}
	a = &Asset{symbol: canonical, typ: Digital, scale: 8}
	r.add(a)
	return a
}

// Assets returns all interned assets.
func (r *Registry) Assets() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, a)
	}
	return out
}

// AssetsOfType returns all interned assets of the given type.
func (r *Registry) AssetsOfType(t Type) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Asset, len(r.byType[t]))
	copy(out, r.byType[t])
	return out
}

// Pair returns the interned ordered pair (trade, price). The pair and its
// reverse are distinct instances.
func (r *Registry) Pair(trade, price *Asset) *Pair {
	key := pairKey{trade: trade.symbol, price: price.symbol}

	r.mu.RLock()
	p, ok := r.pairs[key]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.pairs[key]; ok {
		return p
	}
	p = &Pair{trade: trade, price: price, reg: r}
	r.pairs[key] = p
	r.byAsset[trade] = append(r.byAsset[trade], p)
	if price != trade {
		r.byAsset[price] = append(r.byAsset[price], p)
	}
	return p
}

// PairFromSymbols resolves both symbols and returns the interned pair.
func (r *Registry) PairFromSymbols(trade, price string) *Pair {
	return r.Pair(r.Asset(trade), r.Asset(price))
}

// ParsePair parses a market string in the canonical "TRADE_PRICE" form.
func (r *Registry) ParsePair(s string) (*Pair, bool) {
	return r.ParsePairDelim(s, PairDelimiter)
}

// ParsePairDelim parses a market string using a venue-specific delimiter.
// Malformed input fails soft: the failure is logged and ok is false.
func (r *Registry) ParsePairDelim(s, delim string) (*Pair, bool) {
	parts := strings.Split(s, delim)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		r.logger.Warn("unparsable asset pair string",
			zap.String("input", s), zap.String("delimiter", delim))
		return nil, false
	}
	return r.PairFromSymbols(parts[0], parts[1]), true
}

// PairsContaining returns every interned pair that includes the given asset.
func (r *Registry) PairsContaining(a *Asset) []*Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Pair, len(r.byAsset[a]))
	copy(out, r.byAsset[a])
	return out
}
