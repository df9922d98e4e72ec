package aggregate

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"marketstem/internal/asset"
	"marketstem/internal/marketdata"
)

// Book holds one MarketTicker per canonical market. The global lock only
// guards the market map; per-market state is guarded by each MarketTicker's
// own lock, so ingestion for different markets proceeds concurrently.
//
// A market and its reverse share one aggregate: whichever orientation is seen
// first becomes canonical, and tickers arriving in the opposite orientation
// are inverted before ingestion.
type Book struct {
	mu      sync.RWMutex
	markets map[*asset.Pair]*MarketTicker
	vols    *crossVolumes
	window  time.Duration
	conv    marketdata.Converter
	logger  *zap.Logger
}

func NewBook(window time.Duration, logger *zap.Logger) *Book {
	return &Book{
		markets: make(map[*asset.Pair]*MarketTicker),
		vols:    newCrossVolumes(),
		window:  window,
		logger:  logger,
	}
}

// BindConverter supplies the converter used when an incoming ticker must be
// inverted into its canonical orientation and lacks the fields to derive a
// converted volume on its own. The converter typically resolves through this
// same Book, so it is attached after construction.
func (b *Book) BindConverter(conv marketdata.Converter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conv = conv
}

// Ingest routes the ticker to its market's aggregate, creating the aggregate
// on first sight. A ticker for the reverse of an already canonical market is
// inverted and ingested there instead of opening a parallel aggregate.
func (b *Book) Ingest(t marketdata.Ticker) {
	if t.Market == nil {
		return
	}
	mt, inverted := b.resolve(t.Market)
	if inverted {
		b.logger.Debug("inverting ticker into canonical market",
			zap.String("venue", t.Venue),
			zap.String("market", t.Market.String()),
			zap.String("canonical", mt.Market().String()))
		t = t.Inverse(b.converter())
	}
	mt.ingest(t)
}

func (b *Book) converter() marketdata.Converter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conv
}

// resolve returns the aggregate responsible for the market, reporting whether
// the caller must invert the ticker first.
func (b *Book) resolve(market *asset.Pair) (*MarketTicker, bool) {
	reverse := market.Reverse()

	b.mu.RLock()
	mt, ok := b.markets[market]
	if !ok {
		mt, ok = b.markets[reverse]
		if ok {
			b.mu.RUnlock()
			return mt, true
		}
	}
	b.mu.RUnlock()
	if ok {
		return mt, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if mt, ok := b.markets[market]; ok {
		return mt, false
	}
	if mt, ok := b.markets[reverse]; ok {
		return mt, true
	}
	mt = newMarketTicker(market, b.window, b.vols)
	b.markets[market] = mt
	return mt, false
}

// Get returns the aggregate for the exact market orientation, if one exists.
func (b *Book) Get(market *asset.Pair) (*MarketTicker, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	mt, ok := b.markets[market]
	return mt, ok
}

// Snapshot returns a point-in-time view of the exact market orientation.
func (b *Book) Snapshot(market *asset.Pair) (Snapshot, bool) {
	mt, ok := b.Get(market)
	if !ok {
		return Snapshot{}, false
	}
	return mt.Snapshot(), true
}

// SnapshotEither returns a snapshot for the market in whichever orientation
// the Book tracks it. The second result reports that the snapshot belongs to
// the reverse orientation of the requested market.
func (b *Book) SnapshotEither(market *asset.Pair) (Snapshot, bool, bool) {
	if mt, ok := b.Get(market); ok {
		return mt.Snapshot(), false, true
	}
	if mt, ok := b.Get(market.Reverse()); ok {
		return mt.Snapshot(), true, true
	}
	return Snapshot{}, false, false
}

// SnapshotsContaining returns snapshots of every tracked market that trades
// or prices the asset.
func (b *Book) SnapshotsContaining(a *asset.Asset) []Snapshot {
	b.mu.RLock()
	matched := make([]*MarketTicker, 0)
	for market, mt := range b.markets {
		if market.Contains(a) {
			matched = append(matched, mt)
		}
	}
	b.mu.RUnlock()

	out := make([]Snapshot, 0, len(matched))
	for _, mt := range matched {
		out = append(out, mt.Snapshot())
	}
	return out
}

// Snapshots returns a snapshot of every tracked market.
func (b *Book) Snapshots() []Snapshot {
	b.mu.RLock()
	all := make([]*MarketTicker, 0, len(b.markets))
	for _, mt := range b.markets {
		all = append(all, mt)
	}
	b.mu.RUnlock()

	out := make([]Snapshot, 0, len(all))
	for _, mt := range all {
		out = append(out, mt.Snapshot())
	}
	return out
}

// Markets lists the canonical markets currently tracked.
func (b *Book) Markets() []*asset.Pair {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*asset.Pair, 0, len(b.markets))
	for market := range b.markets {
		out = append(out, market)
	}
	return out
}
