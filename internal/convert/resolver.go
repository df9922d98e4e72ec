package convert

import (
	"sort"

	"github.com/shopspring/decimal"

	"marketstem/internal/aggregate"
	"marketstem/internal/asset"
)

// Resolver derives exchange rates from the aggregate ticker book. Direct
// markets resolve from their trailing volume-weighted last price; pairs with
// no market resolve recursively through proxy assets, most liquid proxy
// first, up to a configured hop bound.
//
// Resolver satisfies the converter dependency of ticker inversion, which is
// why it hangs off the book it reads from.
type Resolver struct {
	assets     *asset.Registry
	book       *aggregate.Book
	maxProxies int
}

func NewResolver(assets *asset.Registry, book *aggregate.Book, maxProxies int) *Resolver {
	return &Resolver{assets: assets, book: book, maxProxies: maxProxies}
}

// Rate resolves the exchange rate from the pair's trade asset to its price
// asset. The second result is false when no rate can be derived.
func (r *Resolver) Rate(pair *asset.Pair) (Rate, bool) {
	if pair == nil {
		return Rate{}, false
	}
	return r.rate(pair, 0)
}

func (r *Resolver) rate(pair *asset.Pair, attempt int) (Rate, bool) {
	source := pair.TradeAsset()
	desired := pair.PriceAsset()
	if source == desired {
		return identity(source), true
	}

	if snap, reversed, ok := r.book.SnapshotEither(pair); ok {
		// A live market settles the question either way: without a trailing
		// average there is no rate, and proxy search is not a substitute.
		rate, ok := rateFromSnapshot(snap)
		if !ok {
			return Rate{}, false
		}
		if reversed {
			rate = rate.Reverse()
		}
		return rate, true
	}

	if attempt >= r.maxProxies {
		return Rate{}, false
	}
	return r.throughProxy(source, desired, attempt)
}

// throughProxy walks markets involving the desired asset in descending
// liquidity order and returns the first chain that also reaches the source.
func (r *Resolver) throughProxy(source, desired *asset.Asset, attempt int) (Rate, bool) {
	for _, toRate := range r.proxyRates(source, desired) {
		proxy := toRate.From
		fromRate, ok := r.rate(r.assets.Pair(source, proxy), attempt+1)
		if !ok {
			continue
		}
		return compose(fromRate, toRate), true
	}
	return Rate{}, false
}

// proxyRates builds candidate proxy-to-desired rates from every live market
// involving the desired asset, ranked by volume denominated in that asset.
func (r *Resolver) proxyRates(source, desired *asset.Asset) []Rate {
	snaps := r.book.SnapshotsContaining(desired)
	rates := make([]Rate, 0, len(snaps))
	for _, snap := range snaps {
		rate, ok := rateFromSnapshot(snap)
		if !ok {
			continue
		}
		if rate.From == desired {
			rate = rate.Reverse()
		}
		if rate.From == source || rate.From == desired {
			continue
		}
		rates = append(rates, rate)
	}
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].NormalizedVolume(desired).GreaterThan(rates[j].NormalizedVolume(desired))
	})
	return rates
}

func rateFromSnapshot(snap aggregate.Snapshot) (Rate, bool) {
	if !snap.VWALast15Min.Valid {
		return Rate{}, false
	}
	return Rate{
		From:   snap.Market.TradeAsset(),
		To:     snap.Market.PriceAsset(),
		Rate:   snap.VWALast15Min.Decimal,
		Volume: snap.TotalVolume,
	}, true
}

// Convert resolves a rate for the pair and applies it to an amount of the
// pair's trade asset. It implements the converter used during ticker
// inversion.
func (r *Resolver) Convert(amount decimal.Decimal, pair *asset.Pair) (decimal.Decimal, bool) {
	rate, ok := r.Rate(pair)
	if !ok {
		return decimal.Decimal{}, false
	}
	return rate.Convert(amount, pair.TradeAsset()), true
}

// RateBetween resolves a rate between two assets named by symbol.
func (r *Resolver) RateBetween(from, to string) (Rate, bool) {
	return r.Rate(r.assets.PairFromSymbols(from, to))
}

// ConvertBetween converts an amount between two assets named by symbol.
func (r *Resolver) ConvertBetween(amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	return r.Convert(amount, r.assets.PairFromSymbols(from, to))
}
