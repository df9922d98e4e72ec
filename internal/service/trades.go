package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketstem/internal/marketdata"
	"marketstem/internal/metrics"
	"marketstem/internal/stream"
	"marketstem/pkg/cache"
)

// TradeService publishes public trades exactly once per (venue, market, id).
// Identity markers live in the shared cache so restarts and sibling processes
// agree on what was already seen.
type TradeService struct {
	logger    *zap.Logger
	cache     *cache.Client
	channel   string
	markerTTL time.Duration
}

func NewTradeService(logger *zap.Logger, cacheClient *cache.Client, channel string,
	markerTTL time.Duration) *TradeService {
	return &TradeService{
		logger:    logger,
		cache:     cacheClient,
		channel:   channel,
		markerTTL: markerTTL,
	}
}

// Ingest publishes the trade unless its identity was already recorded. When
// the marker store is unreachable the trade publishes anyway; duplicates are
// preferable to losses.
func (s *TradeService) Ingest(tr marketdata.Trade) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	market := tr.Market.String()
	fresh, err := s.cache.MarkTradeSeen(ctx, tr.Venue, market, tr.ID, s.markerTTL)
	if err != nil {
		s.logger.Warn("failed to mark trade seen",
			zap.String("venue", tr.Venue), zap.String("market", market), zap.Error(err))
		fresh = true
	}
	if !fresh {
		metrics.TradesDuplicate.Inc()
		return
	}

	payload, err := stream.EncodeTrade(tr)
	if err != nil {
		s.logger.Warn("failed to encode trade", zap.Error(err))
		return
	}
	if err := s.cache.Publish(ctx, s.channel, payload); err != nil {
		s.logger.Warn("failed to publish trade",
			zap.String("venue", tr.Venue), zap.String("market", market), zap.Error(err))
		return
	}
	metrics.TradesPublished.Inc()
}
