package stream

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketstem/internal/asset"
	"marketstem/internal/depth"
	"marketstem/internal/marketdata"
)

const (
	TopicTicker = "ticker"
	TopicDepth  = "depth"
	TopicTrade  = "trade"
)

// Sinks receives the decoded market data. Nil entries drop the corresponding
// topic.
type Sinks struct {
	Tickers func(marketdata.Ticker)
	Depths  func(*depth.Depth)
	Trades  func(marketdata.Trade)
}

// MakeMessageHandler returns a function that decodes incoming WebSocket
// messages and routes them to the sinks. Malformed messages are logged and
// skipped; one bad venue payload never stops the feed.
func MakeMessageHandler(logger *zap.Logger, assets *asset.Registry, sinks Sinks) func(msg []byte) {
	return func(msg []byte) {
		// Step 1: Extract topic string for early filtering
		var meta struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(msg, &meta); err != nil {
			logger.Warn("failed to extract topic", zap.Error(err))
			return
		}

		// Step 2: Fully parse and route the payload by topic
		switch meta.Topic {
		case TopicTicker:
			handleTicker(logger, assets, sinks, msg)
		case TopicDepth:
			handleDepth(logger, assets, sinks, msg)
		case TopicTrade:
			handleTrade(logger, assets, sinks, msg)
		default:
			// Ignore non-data messages (e.g., subscription responses)
		}
	}
}

func handleTicker(logger *zap.Logger, assets *asset.Registry, sinks Sinks, msg []byte) {
	if sinks.Tickers == nil {
		return
	}
	var parsed TickerMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		logger.Warn("failed to parse ticker payload", zap.Error(err))
		return
	}
	ticker, ok := DecodeTicker(logger, assets, parsed)
	if !ok {
		return
	}
	sinks.Tickers(ticker)
}

// DecodeTicker converts the wire ticker into the normalized form. Decoding
// fails only on an unparseable market or numeric field.
func DecodeTicker(logger *zap.Logger, assets *asset.Registry, m TickerMessage) (marketdata.Ticker, bool) {
	market, ok := assets.ParsePair(m.Market)
	if !ok {
		return marketdata.Ticker{}, false
	}

	ticker := marketdata.Ticker{
		Venue:     m.Venue,
		Market:    market,
		Timestamp: wireTime(m.Timestamp),
	}

	fields := []struct {
		raw  string
		dest *decimal.NullDecimal
	}{
		{m.Last, &ticker.Last},
		{m.Bid, &ticker.Bid},
		{m.Ask, &ticker.Ask},
		{m.High, &ticker.High},
		{m.Low, &ticker.Low},
		{m.Volume, &ticker.Volume},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			logger.Warn("failed to parse ticker field",
				zap.String("venue", m.Venue), zap.String("market", m.Market),
				zap.String("value", f.raw), zap.Error(err))
			return marketdata.Ticker{}, false
		}
		*f.dest = decimal.NewNullDecimal(d)
	}
	return ticker, true
}

func handleDepth(logger *zap.Logger, assets *asset.Registry, sinks Sinks, msg []byte) {
	if sinks.Depths == nil {
		return
	}
	var parsed DepthMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		logger.Warn("failed to parse depth payload", zap.Error(err))
		return
	}

	market, ok := assets.ParsePair(parsed.Market)
	if !ok {
		return
	}

	builder := depth.NewBuilder(parsed.Venue, market)
	for _, level := range parsed.Bids {
		if err := builder.AddBidStrings(level[1], level[0]); err != nil {
			logger.Warn("failed to parse bid level",
				zap.String("venue", parsed.Venue), zap.String("market", parsed.Market),
				zap.Error(err))
			return
		}
	}
	for _, level := range parsed.Asks {
		if err := builder.AddAskStrings(level[1], level[0]); err != nil {
			logger.Warn("failed to parse ask level",
				zap.String("venue", parsed.Venue), zap.String("market", parsed.Market),
				zap.Error(err))
			return
		}
	}
	sinks.Depths(builder.Build())
}

func handleTrade(logger *zap.Logger, assets *asset.Registry, sinks Sinks, msg []byte) {
	if sinks.Trades == nil {
		return
	}
	var parsed TradeMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		logger.Warn("failed to parse trade payload", zap.Error(err))
		return
	}

	market, ok := assets.ParsePair(parsed.Market)
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(parsed.Amount)
	if err != nil {
		logger.Warn("failed to parse trade amount", zap.String("value", parsed.Amount), zap.Error(err))
		return
	}
	price, err := decimal.NewFromString(parsed.Price)
	if err != nil {
		logger.Warn("failed to parse trade price", zap.String("value", parsed.Price), zap.Error(err))
		return
	}

	sinks.Trades(marketdata.NewTrade(parsed.Venue, parsed.TradeID, market, amount, price,
		wireTime(parsed.Timestamp)))
}

func wireTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
