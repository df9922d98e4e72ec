package aggregate

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
	"marketstem/internal/marketdata"
	"marketstem/internal/num"
)

// MarketTicker is the live aggregate ticker for one canonical market. All
// mutation and statistic derivation happens under the instance's own lock, so
// snapshots always reflect a fully applied ingestion; different markets never
// contend with each other.
type MarketTicker struct {
	mu          sync.Mutex
	market      *asset.Pair
	tickers     map[string]marketdata.Ticker
	totalVolume decimal.Decimal
	low         decimal.NullDecimal
	high        decimal.NullDecimal
	timestamp   time.Time
	lastMean    *meanWindow
	vols        *crossVolumes
}

func newMarketTicker(market *asset.Pair, window time.Duration, vols *crossVolumes) *MarketTicker {
	return &MarketTicker{
		market:      market,
		tickers:     make(map[string]marketdata.Ticker),
		totalVolume: decimal.Zero,
		timestamp:   time.Now(),
		lastMean:    newMeanWindow(window),
		vols:        vols,
	}
}

// Market returns the canonical pair this aggregate tracks.
func (m *MarketTicker) Market() *asset.Pair { return m.market }

// ingest replaces the venue's contribution with the new ticker and refreshes
// the derived running statistics. The shared cross-market table is updated
// after the per-market critical section; see crossVolumes.
func (m *MarketTicker) ingest(t marketdata.Ticker) {
	m.mu.Lock()
	m.timestamp = time.Now()
	m.updateTotalVolume(t)
	m.updateLowHigh(t)
	m.tickers[t.Venue] = t
	total := m.totalVolume
	m.mu.Unlock()

	m.vols.update(m.market, total)
}

func (m *MarketTicker) updateTotalVolume(t marketdata.Ticker) {
	previous, ok := m.tickers[t.Venue]
	if ok && previous.Volume.Valid && t.Volume.Valid {
		// Replace this venue's earlier contribution instead of accumulating it.
		m.totalVolume = m.totalVolume.Sub(previous.Volume.Decimal).Add(t.Volume.Decimal)
		return
	}
	if t.Volume.Valid {
		m.totalVolume = m.totalVolume.Add(t.Volume.Decimal)
	}
}

func (m *MarketTicker) updateLowHigh(t marketdata.Ticker) {
	// All-time bounds: they never reset or decay.
	if t.Low.Valid && (!m.low.Valid || t.Low.Decimal.LessThan(m.low.Decimal)) {
		m.low = decimal.NewNullDecimal(t.Low.Decimal)
	}
	if t.High.Valid && (!m.high.Valid || t.High.Decimal.GreaterThan(m.high.Decimal)) {
		m.high = decimal.NewNullDecimal(t.High.Decimal)
	}
}

// vwa computes a volume-weighted average over the venues reporting both the
// statistic and a volume. Caller holds the lock.
func (m *MarketTicker) vwa(pick func(marketdata.Ticker) decimal.NullDecimal) decimal.NullDecimal {
	weighted := decimal.Zero
	matchedVolume := decimal.Zero
	for _, t := range m.tickers {
		v := pick(t)
		if !v.Valid || !t.Volume.Valid {
			continue
		}
		weighted = weighted.Add(v.Decimal.Mul(t.Volume.Decimal))
		matchedVolume = matchedVolume.Add(t.Volume.Decimal)
	}
	if !matchedVolume.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Divide(weighted, matchedVolume, num.DivisionScale))
}

func (m *MarketTicker) vwaLast() decimal.NullDecimal {
	last := m.vwa(func(t marketdata.Ticker) decimal.NullDecimal { return t.Last })
	if last.Valid {
		// Every successful computation feeds the trailing mean.
		m.lastMean.add(last.Decimal)
	}
	return last
}

// VWAAsk returns the volume-weighted average ask across venues, absent when
// no venue reports both an ask and a volume.
func (m *MarketTicker) VWAAsk() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vwa(func(t marketdata.Ticker) decimal.NullDecimal { return t.Ask })
}

// VWABid returns the volume-weighted average bid across venues.
func (m *MarketTicker) VWABid() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vwa(func(t marketdata.Ticker) decimal.NullDecimal { return t.Bid })
}

// VWALast returns the volume-weighted average last price across venues and,
// when present, admits it into the trailing 15-minute mean.
func (m *MarketTicker) VWALast() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vwaLast()
}

// VWALast15Min returns the trailing mean of the volume-weighted last price
// over the configured window.
func (m *MarketTicker) VWALast15Min() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	mean, ok := m.lastMean.mean()
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(mean)
}

// Low returns the lowest price ever observed for the market.
func (m *MarketTicker) Low() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.low
}

// High returns the highest price ever observed for the market.
func (m *MarketTicker) High() decimal.NullDecimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.high
}

// TotalVolume returns the summed per-venue volume contributions.
func (m *MarketTicker) TotalVolume() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalVolume
}

// VenueVolumes returns each venue's current volume contribution. Empty until
// the market has positive total volume.
func (m *MarketTicker) VenueVolumes() map[string]decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.venueVolumes()
}

func (m *MarketTicker) venueVolumes() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if !m.totalVolume.IsPositive() {
		return out
	}
	for venue, t := range m.tickers {
		if t.Volume.Valid {
			out[venue] = t.Volume.Decimal
		}
	}
	return out
}

// CrossMarketVolume sums the volume of every known market trading this
// market's trade asset.
func (m *MarketTicker) CrossMarketVolume() decimal.Decimal {
	return m.vols.crossMarketVolume(m.market.TradeAsset())
}

// PriceTypeCrossMarketVolume is CrossMarketVolume restricted to markets whose
// price asset shares this market's price-asset type (fiat or digital).
func (m *MarketTicker) PriceTypeCrossMarketVolume() decimal.Decimal {
	return m.vols.priceTypeVolume(m.market)
}

// AllMarketVolumes returns the per-market volume breakdown for this market's
// trade asset, consumed by conversion resolution to rank proxy candidates.
func (m *MarketTicker) AllMarketVolumes() map[*asset.Pair]decimal.Decimal {
	return m.vols.marketVolumes(m.market.TradeAsset())
}

// Timestamp returns the time of the most recent ingestion.
func (m *MarketTicker) Timestamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timestamp
}

// Snapshot derives the immutable DTO under a single lock hold, so all
// per-market statistics come from one consistent state.
func (m *MarketTicker) Snapshot() Snapshot {
	m.mu.Lock()
	vwaAsk := m.vwa(func(t marketdata.Ticker) decimal.NullDecimal { return t.Ask })
	vwaBid := m.vwa(func(t marketdata.Ticker) decimal.NullDecimal { return t.Bid })
	vwaLast := m.vwaLast()
	var vwaLast15 decimal.NullDecimal
	if mean, ok := m.lastMean.mean(); ok {
		vwaLast15 = decimal.NewNullDecimal(mean)
	}
	snap := Snapshot{
		Market:       m.market,
		VWAAsk:       vwaAsk,
		VWABid:       vwaBid,
		VWALast:      vwaLast,
		VWALast15Min: vwaLast15,
		Low:          m.low,
		High:         m.high,
		TotalVolume:  m.totalVolume,
		VenueVolumes: m.venueVolumes(),
		Timestamp:    m.timestamp,
	}
	m.mu.Unlock()

	snap.CrossMarketVolume = m.vols.crossMarketVolume(m.market.TradeAsset())
	snap.PriceTypeVolume = m.vols.priceTypeVolume(m.market)
	snap.AllMarketVolumes = m.vols.marketVolumes(m.market.TradeAsset())
	return snap
}
