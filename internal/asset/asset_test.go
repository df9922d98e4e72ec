package asset

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop())
}

func TestAssetInterning(t *testing.T) {
	reg := newTestRegistry()

	btc := reg.Asset("btc")
	require.Equal(t, "BTC", btc.Symbol())
	assert.Same(t, btc, reg.Asset("BTC"), "same symbol must return the same instance")
	assert.Same(t, btc, reg.Asset("XBT"), "alias must resolve to the same instance")

	cny := reg.Asset("CNY")
	assert.Same(t, cny, reg.Asset("CNH"))
	assert.Same(t, cny, reg.Asset("rmb"))
}

func TestAssetTypesAndScales(t *testing.T) {
	reg := newTestRegistry()

	usd := reg.Asset("USD")
	assert.Equal(t, Fiat, usd.Type())
	assert.Equal(t, int32(2), usd.Scale())

	jpy := reg.Asset("JPY")
	assert.Equal(t, int32(0), jpy.Scale())

	// Unknown symbols synthesize a digital asset with the default scale.
	mystery := reg.Asset("ZZZCOIN")
	assert.Equal(t, Digital, mystery.Type())
	assert.Equal(t, int32(8), mystery.Scale())
	assert.Same(t, mystery, reg.Asset("zzzcoin"))
}

func TestAssetRoundHalfEven(t *testing.T) {
	reg := newTestRegistry()
	usd := reg.Asset("USD")

	assert.True(t, usd.Round(decimal.RequireFromString("1.125")).Equal(decimal.RequireFromString("1.12")))
	assert.True(t, usd.Round(decimal.RequireFromString("1.135")).Equal(decimal.RequireFromString("1.14")))
}

func TestPairInterningAndReverse(t *testing.T) {
	reg := newTestRegistry()

	btcUSD := reg.PairFromSymbols("BTC", "USD")
	usdBTC := reg.PairFromSymbols("USD", "BTC")

	assert.Same(t, btcUSD, reg.Pair(reg.Asset("BTC"), reg.Asset("USD")))
	assert.NotSame(t, btcUSD, usdBTC, "a pair and its reverse are distinct instances")
	assert.Same(t, usdBTC, btcUSD.Reverse())
	assert.Same(t, btcUSD, btcUSD.Reverse().Reverse())
}

func TestPairStringRoundTrip(t *testing.T) {
	reg := newTestRegistry()

	pair := reg.PairFromSymbols("LTC", "EUR")
	parsed, ok := reg.ParsePair(pair.String())
	require.True(t, ok)
	assert.Same(t, pair, parsed)
}

func TestParsePairDelim(t *testing.T) {
	reg := newTestRegistry()

	pair, ok := reg.ParsePairDelim("BTC-USD", "-")
	require.True(t, ok)
	assert.Same(t, reg.PairFromSymbols("BTC", "USD"), pair)

	// Malformed input fails soft.
	_, ok = reg.ParsePair("BTCUSD")
	assert.False(t, ok)
	_, ok = reg.ParsePair("_USD")
	assert.False(t, ok)
}

func TestDirectionlessKey(t *testing.T) {
	reg := newTestRegistry()

	btcUSD := reg.PairFromSymbols("BTC", "USD")
	usdBTC := btcUSD.Reverse()
	assert.Equal(t, "BTC_USD", btcUSD.DirectionlessKey())
	assert.Equal(t, btcUSD.DirectionlessKey(), usdBTC.DirectionlessKey(),
		"a pair and its mirror share one external key")

	// Shared prefix: the shorter symbol wins.
	ab := reg.PairFromSymbols("DOGEX", "XDG")
	assert.Equal(t, ab.DirectionlessKey(), ab.Reverse().DirectionlessKey())
}

func TestPairsContaining(t *testing.T) {
	reg := newTestRegistry()

	btc := reg.Asset("BTC")
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	btcEUR := reg.PairFromSymbols("BTC", "EUR")
	reg.PairFromSymbols("LTC", "EUR")

	pairs := reg.PairsContaining(btc)
	assert.ElementsMatch(t, []*Pair{btcUSD, btcEUR}, pairs)
}

func TestMarketInvariant(t *testing.T) {
	reg := newTestRegistry()
	btc := reg.Asset("BTC")
	usd := reg.Asset("USD")

	_, err := reg.Market(btc, btc, usd)
	require.ErrorIs(t, err, ErrSameAsset)

	m, err := reg.Market(btc, usd, usd)
	require.NoError(t, err)
	assert.Equal(t, Ask, m.Side(), "price asset != source asset implies an ask")
	assert.Same(t, btc, m.TradeAsset())
	assert.Same(t, reg.Pair(btc, usd), m.Pair())

	m, err = reg.Market(usd, btc, usd)
	require.NoError(t, err)
	assert.Equal(t, Bid, m.Side(), "price asset == source asset implies a bid")
	assert.Same(t, btc, m.TradeAsset())
}

func TestMarketStringAndReverse(t *testing.T) {
	reg := newTestRegistry()

	m, err := reg.MarketFromSymbols("BTC", "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, "BTC_USD_USD", m.String())

	parsed, err := reg.ParseMarket("BTC_USD_USD")
	require.NoError(t, err)
	assert.Equal(t, m.String(), parsed.String())

	rev := m.Reverse()
	assert.Same(t, m.DestinationAsset(), rev.SourceAsset())
	assert.Same(t, m.SourceAsset(), rev.DestinationAsset())
	assert.Same(t, m.PriceAsset(), rev.PriceAsset())

	_, err = reg.ParseMarket("BTC_USD")
	assert.Error(t, err)
}
