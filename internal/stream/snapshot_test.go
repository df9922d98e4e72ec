package stream

import (
	"encoding/json"
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

func TestEncodeSnapshot(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	snap := aggregate.Snapshot{
		Market:            reg.PairFromSymbols("BTC", "USD"),
		VWALast:           decimal.NewNullDecimal(decimal.NewFromInt(100)),
		TotalVolume:       decimal.NewFromInt(5),
		CrossMarketVolume: decimal.NewFromInt(8),
		PriceTypeVolume:   decimal.NewFromInt(5),
		VenueVolumes: map[string]decimal.Decimal{
			"alpha": decimal.NewFromInt(5),
		},
		AllMarketVolumes: map[*asset.Pair]decimal.Decimal{
			reg.PairFromSymbols("BTC", "USD"): decimal.NewFromInt(5),
			reg.PairFromSymbols("BTC", "EUR"): decimal.NewFromInt(3),
		},
		Timestamp: time.UnixMilli(1717243800000),
	}

	payload, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	var msg SnapshotMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, TopicSnapshot, msg.Topic)
	assert.Equal(t, "BTC_USD", msg.Market)
	assert.Equal(t, "100", msg.VWALast)
	assert.Empty(t, msg.VWAAsk, "absent statistics stay absent on the wire")
	assert.Equal(t, "5", msg.TotalVolume)
	assert.Equal(t, "5", msg.VenueVolumes["alpha"])
	assert.Equal(t, map[string]string{"BTC_USD": "5", "BTC_EUR": "3"}, msg.AllMarketVolumes)
	assert.Equal(t, int64(1717243800000), msg.Timestamp)
}

func TestEncodeTradeRoundTrip(t *testing.T) {
	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")
	tr := marketdata.NewTrade("alpha", "t-9", btcUSD,
		decimal.RequireFromString("0.5"), decimal.NewFromInt(100), time.UnixMilli(1717243800000))

	payload, err := EncodeTrade(tr)
	require.NoError(t, err)

	var got []marketdata.Trade
	handle := MakeMessageHandler(zap.NewNop(), reg, Sinks{
		Trades: func(tr marketdata.Trade) { got = append(got, tr) },
	})
	handle(payload)

	require.Len(t, got, 1)
	assert.Equal(t, "t-9", got[0].ID)
	assert.Equal(t, "alpha", got[0].Venue)
	assert.Same(t, btcUSD, got[0].Market)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("0.5")))
}
