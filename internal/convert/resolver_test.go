package convert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketstem/internal/aggregate"
	"marketstem/internal/asset"
	"marketstem/internal/marketdata"
)

func newFixture(t *testing.T) (*asset.Registry, *aggregate.Book, *Resolver) {
	t.Helper()
	reg := asset.NewRegistry(zap.NewNop())
	book := aggregate.NewBook(15*time.Minute, zap.NewNop())
	resolver := NewResolver(reg, book, 2)
	book.BindConverter(resolver)
	return reg, book, resolver
}

func feed(book *aggregate.Book, reg *asset.Registry, trade, price, last, volume string) {
	t := marketdata.Ticker{
		Venue:     "testvenue",
		Market:    reg.PairFromSymbols(trade, price),
		Timestamp: time.Now(),
	}
	if last != "" {
		t.Last = decimal.NewNullDecimal(decimal.RequireFromString(last))
	}
	if volume != "" {
		t.Volume = decimal.NewNullDecimal(decimal.RequireFromString(volume))
	}
	book.Ingest(t)
}

func eq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "got %s want %s", got, want)
}

func TestResolverIdentity(t *testing.T) {
	reg, _, resolver := newFixture(t)
	btc := reg.Asset("BTC")

	rate, ok := resolver.Rate(reg.Pair(btc, btc))
	require.True(t, ok)
	eq(t, "1", rate.Rate)
	eq(t, "-1", rate.Volume)
	assert.Same(t, btc, rate.From)
	assert.Same(t, btc, rate.To)
}

func TestResolverDirectMarket(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "BTC", "USD", "100", "2")

	rate, ok := resolver.RateBetween("BTC", "USD")
	require.True(t, ok)
	eq(t, "100", rate.Rate)
	eq(t, "2", rate.Volume)
}

func TestResolverReverseMarket(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "BTC", "USD", "100", "2")

	rate, ok := resolver.RateBetween("USD", "BTC")
	require.True(t, ok)
	eq(t, "0.01", rate.Rate)
	// Two BTC of liquidity re-denominated into USD.
	eq(t, "200", rate.Volume)
	assert.Same(t, reg.Asset("USD"), rate.From)
	assert.Same(t, reg.Asset("BTC"), rate.To)
}

func TestResolverLiveMarketWithoutAverageBlocksProxies(t *testing.T) {
	reg, book, resolver := newFixture(t)
	// The direct market exists but never reported a last price. A proxy path
	// through BTC is available yet must not be taken.
	feed(book, reg, "LTC", "USD", "", "50")
	feed(book, reg, "LTC", "BTC", "0.05", "40")
	feed(book, reg, "BTC", "USD", "100", "2")

	_, ok := resolver.RateBetween("LTC", "USD")
	assert.False(t, ok)
}

func TestResolverSingleProxy(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "LTC", "BTC", "0.05", "40")
	feed(book, reg, "BTC", "USD", "100", "2")

	rate, ok := resolver.RateBetween("LTC", "USD")
	require.True(t, ok)
	eq(t, "5", rate.Rate)
	eq(t, "0", rate.Volume)
	assert.Same(t, reg.Asset("LTC"), rate.From)
	assert.Same(t, reg.Asset("USD"), rate.To)
}

func TestResolverPrefersLiquidProxy(t *testing.T) {
	reg, book, resolver := newFixture(t)
	// 10 BTC at 100 is 1000 USD of liquidity; 50 LTC at 4 is only 200.
	feed(book, reg, "BTC", "USD", "100", "10")
	feed(book, reg, "LTC", "USD", "4", "50")
	feed(book, reg, "XRP", "BTC", "0.0002", "1000")
	feed(book, reg, "XRP", "LTC", "0.0025", "1000")

	rate, ok := resolver.RateBetween("XRP", "USD")
	require.True(t, ok)
	// The BTC route wins: 0.0002 * 100, not 0.0025 * 4.
	eq(t, "0.02", rate.Rate)
}

func TestResolverChainedProxies(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "XPM", "LTC", "0.1", "500")
	feed(book, reg, "LTC", "BTC", "0.05", "40")
	feed(book, reg, "BTC", "USD", "100", "2")

	rate, ok := resolver.RateBetween("XPM", "USD")
	require.True(t, ok)
	// XPM -> LTC -> BTC -> USD: 0.1 * 0.05 * 100.
	eq(t, "0.5", rate.Rate)
}

func TestResolverHopBound(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	book := aggregate.NewBook(15*time.Minute, zap.NewNop())
	resolver := NewResolver(reg, book, 1)
	book.BindConverter(resolver)

	feed(book, reg, "XPM", "LTC", "0.1", "500")
	feed(book, reg, "LTC", "BTC", "0.05", "40")
	feed(book, reg, "BTC", "USD", "100", "2")

	// Two intermediate assets exceed a single permitted hop.
	_, ok := resolver.RateBetween("XPM", "USD")
	assert.False(t, ok)

	// One intermediate asset still resolves.
	rate, ok := resolver.RateBetween("LTC", "USD")
	require.True(t, ok)
	eq(t, "5", rate.Rate)
}

func TestResolverNoPath(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "BTC", "USD", "100", "2")

	_, ok := resolver.RateBetween("XPM", "EUR")
	assert.False(t, ok)
}

func TestResolverConvert(t *testing.T) {
	reg, book, resolver := newFixture(t)
	feed(book, reg, "BTC", "USD", "100", "2")

	out, ok := resolver.ConvertBetween(decimal.NewFromInt(3), "BTC", "USD")
	require.True(t, ok)
	eq(t, "300", out)

	out, ok = resolver.ConvertBetween(decimal.NewFromInt(300), "USD", "BTC")
	require.True(t, ok)
	eq(t, "3", out)
}

func TestRateConvertDirections(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btc := reg.Asset("BTC")
	usd := reg.Asset("USD")
	rate := Rate{From: btc, To: usd, Rate: decimal.NewFromInt(100), Volume: decimal.NewFromInt(2)}

	eq(t, "500", rate.Convert(decimal.NewFromInt(5), btc))
	eq(t, "5", rate.Convert(decimal.NewFromInt(500), usd))

	rev := rate.Reverse()
	eq(t, "0.01", rev.Rate)
	eq(t, "200", rev.Volume)
	eq(t, "2", rev.NormalizedVolume(btc))
	eq(t, "200", rev.NormalizedVolume(usd))
}
