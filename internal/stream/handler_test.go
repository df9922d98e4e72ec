package stream

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketstem/internal/asset"
	"marketstem/internal/depth"
	"marketstem/internal/marketdata"
)

func TestHandlerRoutesTicker(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	var got []marketdata.Ticker
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Tickers: func(tk marketdata.Ticker) { got = append(got, tk) },
	})

	handle([]byte(`{"topic":"ticker","exchange":"alpha","market":"BTC_USD",
		"last":"100.5","volume":"2","ts":1717243800000}`))

	require.Len(t, got, 1)
	tk := got[0]
	assert.Equal(t, "alpha", tk.Venue)
	assert.Equal(t, "BTC_USD", tk.Market.String())
	require.True(t, tk.Last.Valid)
	assert.True(t, tk.Last.Decimal.Equal(decimal.RequireFromString("100.5")))
	require.True(t, tk.Volume.Valid)
	assert.False(t, tk.Bid.Valid)
	assert.False(t, tk.High.Valid)
	assert.Equal(t, int64(1717243800000), tk.Timestamp.UnixMilli())
}

func TestHandlerRoutesDepth(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	var got []*depth.Depth
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Depths: func(d *depth.Depth) { got = append(got, d) },
	})

	handle([]byte(`{"topic":"depth","exchange":"alpha","market":"BTC_USD",
		"bids":[["1","99"],["2","98"]],"asks":[["1","101"]],"ts":1717243800000}`))

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "alpha", d.Venue())
	best, ok := d.BestBid()
	require.True(t, ok)
	assert.True(t, best.Price.Equal(decimal.NewFromInt(99)))
	assert.True(t, best.Amount.Equal(decimal.NewFromInt(1)))
	assert.Len(t, d.Asks(), 1)
}

func TestHandlerRoutesTrade(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	var got []marketdata.Trade
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Trades: func(tr marketdata.Trade) { got = append(got, tr) },
	})

	handle([]byte(`{"topic":"trade","exchange":"alpha","market":"BTC_USD",
		"trade_id":"t-1","amount":"0.5","price":"100","ts":1717243800000}`))

	require.Len(t, got, 1)
	tr := got[0]
	assert.Equal(t, "t-1", tr.ID)
	assert.True(t, tr.Cost().Equal(decimal.NewFromInt(50)))
}

func TestHandlerSkipsMalformedMessages(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	var tickers int
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Tickers: func(marketdata.Ticker) { tickers++ },
	})

	handle([]byte(`not json`))
	handle([]byte(`{"topic":"ticker","exchange":"alpha","market":"garbage"}`))
	handle([]byte(`{"topic":"ticker","exchange":"alpha","market":"BTC_USD","last":"abc"}`))
	handle([]byte(`{"topic":"subscribed","args":["ticker"]}`))

	assert.Zero(t, tickers)
}

func TestHandlerDefaultsTradeIdentity(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	var got []marketdata.Trade
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Trades: func(tr marketdata.Trade) { got = append(got, tr) },
	})

	handle([]byte(`{"topic":"trade","exchange":"alpha","market":"BTC_USD",
		"amount":"1","price":"100"}`))

	require.Len(t, got, 1)
	assert.Equal(t, "0", got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}
