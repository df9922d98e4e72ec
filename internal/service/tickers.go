// Package service wires the ingestion sinks to the aggregation book, the
// depth store, the cache and the database, and applies the publish policies.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"marketstem/internal/aggregate"
	"marketstem/internal/asset"
	"marketstem/internal/marketdata"
	"marketstem/internal/metrics"
	"marketstem/internal/stream"
	"marketstem/pkg/cache"
	"marketstem/pkg/storage/postgres"
)

// TickerService folds venue tickers into the aggregation book and publishes
// the resulting snapshots. Publishing is throttled per market so a chatty
// venue cannot flood subscribers or the database.
type TickerService struct {
	logger  *zap.Logger
	book    *aggregate.Book
	cache   *cache.Client
	db      *postgres.PostgresClient
	channel string

	publishEvery time.Duration
	mu           sync.Mutex
	limiters     map[*asset.Pair]*rate.Limiter
}

func NewTickerService(logger *zap.Logger, book *aggregate.Book, cacheClient *cache.Client,
	db *postgres.PostgresClient, channel string, publishEvery time.Duration) *TickerService {
	return &TickerService{
		logger:       logger,
		book:         book,
		cache:        cacheClient,
		db:           db,
		channel:      channel,
		publishEvery: publishEvery,
		limiters:     make(map[*asset.Pair]*rate.Limiter),
	}
}

// Ingest folds one venue ticker into the book and, when the market's publish
// limiter allows, pushes a fresh snapshot to cache, pub/sub and the database.
func (s *TickerService) Ingest(t marketdata.Ticker) {
	if t.Market == nil {
		s.logger.Warn("ticker without market", zap.String("venue", t.Venue))
		return
	}
	if !t.Volume.Valid {
		s.logger.Debug("ticker without volume",
			zap.String("venue", t.Venue), zap.String("market", t.Market.String()))
	}
	metrics.TickersIngested.WithLabelValues(t.Venue).Inc()
	s.book.Ingest(t)

	snap, _, ok := s.book.SnapshotEither(t.Market)
	if !ok {
		return
	}
	if !s.allowPublish(snap.Market) {
		return
	}
	s.publish(snap)
}

func (s *TickerService) allowPublish(market *asset.Pair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[market]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.publishEvery), 1)
		s.limiters[market] = limiter
	}
	return limiter.Allow()
}

func (s *TickerService) publish(snap aggregate.Snapshot) {
	payload, err := stream.EncodeSnapshot(snap)
	if err != nil {
		s.logger.Warn("failed to encode snapshot", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	market := snap.Market.String()
	if err := s.cache.PutSnapshot(ctx, market, payload); err != nil {
		s.logger.Warn("failed to cache snapshot", zap.String("market", market), zap.Error(err))
	}
	if err := s.cache.Publish(ctx, s.channel, payload); err != nil {
		s.logger.Warn("failed to publish snapshot", zap.String("market", market), zap.Error(err))
	}
	if err := s.db.InsertSnapshot(ctx, postgres.ToSnapshotRecord(snap)); err != nil {
		s.logger.Warn("failed to insert snapshot record", zap.String("market", market), zap.Error(err))
	}
	metrics.SnapshotsPublished.Inc()
}
