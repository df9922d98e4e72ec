package venue

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"marketstem/internal/asset"
	"marketstem/internal/stream"
)

// Poller drains one Source on a fixed interval, pushing everything it fetches
// into the sinks. Requests to the venue pass through a rate limiter so a
// venue with many markets is polled politely.
type Poller struct {
	source      Source
	sinks       stream.Sinks
	interval    time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
	lastTradeID map[*asset.Pair]string
}

func NewPoller(source Source, sinks stream.Sinks, interval time.Duration,
	requestsPerSecond float64, logger *zap.Logger) *Poller {
	return &Poller{
		source:      source,
		sinks:       sinks,
		interval:    interval,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:      logger.With(zap.String("venue", source.ID())),
		lastTradeID: make(map[*asset.Pair]string),
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}
	markets, err := p.source.Markets(ctx)
	if err != nil {
		p.logger.Warn("failed to list venue markets", zap.Error(err))
		return
	}

	for _, market := range markets {
		p.pollMarket(ctx, market)
		if ctx.Err() != nil {
			return
		}
	}
}

func (p *Poller) pollMarket(ctx context.Context, market *asset.Pair) {
	if p.sinks.Tickers != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		ticker, ok, err := p.source.Ticker(ctx, market)
		if err != nil {
			p.logger.Warn("failed to fetch ticker", zap.String("market", market.String()), zap.Error(err))
		} else if ok {
			p.sinks.Tickers(ticker)
		}
	}

	if ds, capable := p.source.(DepthSource); capable && p.sinks.Depths != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		d, ok, err := ds.Depth(ctx, market)
		if err != nil {
			p.logger.Warn("failed to fetch depth", zap.String("market", market.String()), zap.Error(err))
		} else if ok {
			p.sinks.Depths(d)
		}
	}

	if ts, capable := p.source.(TradeSource); capable && p.sinks.Trades != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		trades, err := ts.Trades(ctx, market, p.lastTradeID[market])
		if err != nil {
			p.logger.Warn("failed to fetch trades", zap.String("market", market.String()), zap.Error(err))
			return
		}
		for _, trade := range trades {
			p.sinks.Trades(trade)
			p.lastTradeID[market] = trade.ID
		}
	}
}
