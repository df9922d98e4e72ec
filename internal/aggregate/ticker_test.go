package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketstem/internal/asset"
	"marketstem/internal/marketdata"
	"marketstem/internal/num"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func venueTicker(venue string, market *asset.Pair, last, volume string) marketdata.Ticker {
	t := marketdata.Ticker{Venue: venue, Market: market, Timestamp: time.Now()}
	if last != "" {
		t.Last = nd(last)
	}
	if volume != "" {
		t.Volume = nd(volume)
	}
	return t
}

func TestMarketTickerVWALast(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	mt.ingest(venueTicker("alpha", btcUSD, "100", "2"))
	mt.ingest(venueTicker("beta", btcUSD, "110", "3"))

	last := mt.VWALast()
	require.True(t, last.Valid)
	assert.True(t, last.Decimal.Equal(decimal.NewFromInt(106)), "vwa last = %s", last.Decimal)
	assert.True(t, mt.TotalVolume().Equal(decimal.NewFromInt(5)))
}

func TestMarketTickerVenueReplacement(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	mt.ingest(venueTicker("alpha", btcUSD, "100", "2"))
	mt.ingest(venueTicker("beta", btcUSD, "110", "3"))
	mt.ingest(venueTicker("alpha", btcUSD, "100", "4"))

	assert.True(t, mt.TotalVolume().Equal(decimal.NewFromInt(7)),
		"total = %s", mt.TotalVolume())

	want := num.Divide(decimal.NewFromInt(730), decimal.NewFromInt(7), num.DivisionScale)
	last := mt.VWALast()
	require.True(t, last.Valid)
	assert.True(t, last.Decimal.Equal(want), "vwa last = %s want %s", last.Decimal, want)
}

func TestMarketTickerSkipsVenuesWithoutVolume(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	mt.ingest(venueTicker("alpha", btcUSD, "100", "2"))
	mt.ingest(venueTicker("gamma", btcUSD, "999", ""))

	last := mt.VWALast()
	require.True(t, last.Valid)
	assert.True(t, last.Decimal.Equal(decimal.NewFromInt(100)), "vwa last = %s", last.Decimal)
}

func TestMarketTickerAbsentStatistics(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	mt.ingest(venueTicker("alpha", btcUSD, "", "5"))

	assert.False(t, mt.VWALast().Valid)
	assert.False(t, mt.VWAAsk().Valid)
	assert.False(t, mt.VWABid().Valid)
	assert.False(t, mt.VWALast15Min().Valid)
	assert.False(t, mt.Low().Valid)
	assert.False(t, mt.High().Valid)
}

func TestMarketTickerLowHighMonotonic(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	first := venueTicker("alpha", btcUSD, "100", "1")
	first.Low = nd("90")
	first.High = nd("120")
	mt.ingest(first)

	// Narrower range from the same venue must not shrink the bounds.
	second := venueTicker("alpha", btcUSD, "100", "1")
	second.Low = nd("95")
	second.High = nd("115")
	mt.ingest(second)

	assert.True(t, mt.Low().Decimal.Equal(decimal.NewFromInt(90)))
	assert.True(t, mt.High().Decimal.Equal(decimal.NewFromInt(120)))

	third := venueTicker("beta", btcUSD, "100", "1")
	third.Low = nd("80")
	third.High = nd("130")
	mt.ingest(third)

	assert.True(t, mt.Low().Decimal.Equal(decimal.NewFromInt(80)))
	assert.True(t, mt.High().Decimal.Equal(decimal.NewFromInt(130)))
}

func TestMarketTickerVenueVolumes(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	assert.Empty(t, mt.VenueVolumes())

	mt.ingest(venueTicker("alpha", btcUSD, "100", "2"))
	mt.ingest(venueTicker("beta", btcUSD, "110", "3"))

	vols := mt.VenueVolumes()
	require.Len(t, vols, 2)
	assert.True(t, vols["alpha"].Equal(decimal.NewFromInt(2)))
	assert.True(t, vols["beta"].Equal(decimal.NewFromInt(3)))
}

func TestCrossMarketVolumes(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	btcEUR := reg.PairFromSymbols("BTC", "EUR")
	btcLTC := reg.PairFromSymbols("BTC", "LTC")

	vols := newCrossVolumes()
	usd := newMarketTicker(btcUSD, 15*time.Minute, vols)
	eur := newMarketTicker(btcEUR, 15*time.Minute, vols)
	ltc := newMarketTicker(btcLTC, 15*time.Minute, vols)

	usd.ingest(venueTicker("alpha", btcUSD, "100", "2"))
	eur.ingest(venueTicker("alpha", btcEUR, "90", "3"))
	ltc.ingest(venueTicker("alpha", btcLTC, "250", "5"))

	assert.True(t, usd.CrossMarketVolume().Equal(decimal.NewFromInt(10)),
		"cross = %s", usd.CrossMarketVolume())

	// Fiat-priced markets only.
	assert.True(t, usd.PriceTypeCrossMarketVolume().Equal(decimal.NewFromInt(5)),
		"fiat cross = %s", usd.PriceTypeCrossMarketVolume())
	// Digital-priced markets only.
	assert.True(t, ltc.PriceTypeCrossMarketVolume().Equal(decimal.NewFromInt(5)),
		"digital cross = %s", ltc.PriceTypeCrossMarketVolume())

	byMarket := usd.AllMarketVolumes()
	require.Len(t, byMarket, 3)
	assert.True(t, byMarket[btcEUR].Equal(decimal.NewFromInt(3)))
}

func TestSnapshotConsistency(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	mt := newMarketTicker(btcUSD, 15*time.Minute, newCrossVolumes())

	tk := venueTicker("alpha", btcUSD, "100", "2")
	tk.Bid = nd("99")
	tk.Ask = nd("101")
	tk.Low = nd("95")
	tk.High = nd("105")
	mt.ingest(tk)

	snap := mt.Snapshot()
	assert.Same(t, btcUSD, snap.Market)
	require.True(t, snap.VWALast.Valid)
	assert.True(t, snap.VWALast.Decimal.Equal(decimal.NewFromInt(100)))
	assert.True(t, snap.VWABid.Decimal.Equal(decimal.NewFromInt(99)))
	assert.True(t, snap.VWAAsk.Decimal.Equal(decimal.NewFromInt(101)))
	// The snapshot's own VWA last feeds the trailing mean before it is read.
	require.True(t, snap.VWALast15Min.Valid)
	assert.True(t, snap.VWALast15Min.Decimal.Equal(decimal.NewFromInt(100)))
	assert.True(t, snap.TotalVolume.Equal(decimal.NewFromInt(2)))
	assert.True(t, snap.CrossMarketVolume.Equal(decimal.NewFromInt(2)))
	require.Len(t, snap.VenueVolumes, 1)
	assert.True(t, snap.VenueVolumes["alpha"].Equal(decimal.NewFromInt(2)))
}
