package aggregate

import (
	"sync"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
)

// crossVolumes tracks every market's total volume keyed by trade asset, both
// combined and split by the market's price-asset type. It is shared across
// all markets of a Book and guarded by its own lock: updating it is a
// separate critical section from a market's own volume update, so readers may
// observe the two slightly out of step. That is accepted eventual
// consistency, not something to repair with a global lock.
type crossVolumes struct {
	mu      sync.Mutex
	all     map[*asset.Asset]map[*asset.Pair]decimal.Decimal
	fiat    map[*asset.Asset]map[*asset.Pair]decimal.Decimal
	digital map[*asset.Asset]map[*asset.Pair]decimal.Decimal
}

func newCrossVolumes() *crossVolumes {
	return &crossVolumes{
		all:     make(map[*asset.Asset]map[*asset.Pair]decimal.Decimal),
		fiat:    make(map[*asset.Asset]map[*asset.Pair]decimal.Decimal),
		digital: make(map[*asset.Asset]map[*asset.Pair]decimal.Decimal),
	}
}

func (v *crossVolumes) typed(market *asset.Pair) map[*asset.Asset]map[*asset.Pair]decimal.Decimal {
	if market.PriceAsset().Type() == asset.Fiat {
		return v.fiat
	}
	return v.digital
}

func put(table map[*asset.Asset]map[*asset.Pair]decimal.Decimal, trade *asset.Asset,
	market *asset.Pair, volume decimal.Decimal) {
	byMarket, ok := table[trade]
	if !ok {
		byMarket = make(map[*asset.Pair]decimal.Decimal)
		table[trade] = byMarket
	}
	byMarket[market] = volume
}

// update records the market's current total volume under its trade asset.
func (v *crossVolumes) update(market *asset.Pair, totalVolume decimal.Decimal) {
	trade := market.TradeAsset()
	v.mu.Lock()
	defer v.mu.Unlock()
	put(v.all, trade, market, totalVolume)
	put(v.typed(market), trade, market, totalVolume)
}

// crossMarketVolume sums the volumes of every known market trading the asset.
func (v *crossVolumes) crossMarketVolume(trade *asset.Asset) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	sum := decimal.Zero
	for _, volume := range v.all[trade] {
		sum = sum.Add(volume)
	}
	return sum
}

// priceTypeVolume sums volumes for the market's trade asset restricted to
// markets whose price asset shares this market's price-asset type.
func (v *crossVolumes) priceTypeVolume(market *asset.Pair) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	sum := decimal.Zero
	for _, volume := range v.typed(market)[market.TradeAsset()] {
		sum = sum.Add(volume)
	}
	return sum
}

// marketVolumes returns a copy of the per-market volume breakdown for the
// trade asset.
func (v *crossVolumes) marketVolumes(trade *asset.Asset) map[*asset.Pair]decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[*asset.Pair]decimal.Decimal, len(v.all[trade]))
	for market, volume := range v.all[trade] {
		out[market] = volume
	}
	return out
}
