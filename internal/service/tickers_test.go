package service

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

func TestTickerServiceDropsMarketlessTicker(t *testing.T) {
	book := aggregate.NewBook(15*time.Minute, zap.NewNop())
	svc := NewTickerService(zap.NewNop(), book, nil, nil, "tickers", time.Second)

	require.NotPanics(t, func() {
		svc.Ingest(marketdata.Ticker{
			Venue:  "alpha",
			Last:   decimal.NewNullDecimal(decimal.NewFromInt(100)),
			Volume: decimal.NewNullDecimal(decimal.NewFromInt(2)),
		})
	})
	assert.Empty(t, book.Markets())
}

func TestTickerServicePublishThrottle(t *testing.T) {
	book := aggregate.NewBook(15*time.Minute, zap.NewNop())
	svc := NewTickerService(zap.NewNop(), book, nil, nil, "tickers", time.Hour)

	reg := asset.NewRegistry(zap.NewNop())
	btcUSD := reg.PairFromSymbols("BTC", "USD")

	assert.True(t, svc.allowPublish(btcUSD))
	assert.False(t, svc.allowPublish(btcUSD), "second publish inside the window is held back")
	assert.True(t, svc.allowPublish(btcUSD.Reverse()), "each market has its own limiter")
}
