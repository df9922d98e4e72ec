package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketstem/internal/depth"
	"marketstem/internal/metrics"
	"marketstem/internal/stream"
	"marketstem/pkg/cache"
)

// DepthService stores venue order books and publishes the ones that changed.
// Deduplication is two-tier: a local fingerprint table answers cheaply for
// this process, and the shared cache fingerprint suppresses duplicates across
// processes. An unchanged book republishes once the threshold elapses.
type DepthService struct {
	logger    *zap.Logger
	store     *depth.Store
	cache     *cache.Client
	channel   string
	republish time.Duration

	mu   sync.Mutex
	seen map[string]depthSeen
}

type depthSeen struct {
	fingerprint string
	at          time.Time
}

func NewDepthService(logger *zap.Logger, store *depth.Store, cacheClient *cache.Client,
	channel string, republish time.Duration) *DepthService {
	return &DepthService{
		logger:    logger,
		store:     store,
		cache:     cacheClient,
		channel:   channel,
		republish: republish,
		seen:      make(map[string]depthSeen),
	}
}

// Ingest stores the snapshot and publishes it unless an identical book was
// already published recently.
func (s *DepthService) Ingest(d *depth.Depth) {
	s.store.Put(d)
	metrics.DepthsStored.WithLabelValues(d.Venue()).Inc()

	fingerprint := d.Fingerprint().String()
	if !s.shouldPublish(d, fingerprint) {
		return
	}

	payload, err := stream.EncodeDepth(d)
	if err != nil {
		s.logger.Warn("failed to encode depth", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	market := d.Market().String()
	if err := s.cache.Publish(ctx, s.channel, payload); err != nil {
		s.logger.Warn("failed to publish depth",
			zap.String("venue", d.Venue()), zap.String("market", market), zap.Error(err))
	}
	if err := s.cache.PutDepthFingerprint(ctx, d.Venue(), market, fingerprint); err != nil {
		s.logger.Warn("failed to store depth fingerprint",
			zap.String("venue", d.Venue()), zap.String("market", market), zap.Error(err))
	}
	metrics.DepthsPublished.Inc()
}

func (s *DepthService) shouldPublish(d *depth.Depth, fingerprint string) bool {
	key := d.Venue() + ":" + d.Market().String()
	now := time.Now()

	s.mu.Lock()
	prev, ok := s.seen[key]
	if ok && prev.fingerprint == fingerprint && now.Sub(prev.at) < s.republish {
		s.mu.Unlock()
		return false
	}
	s.seen[key] = depthSeen{fingerprint: fingerprint, at: now}
	s.mu.Unlock()

	// Another process may have published the same book already; only suppress
	// when this process has no recent record, so an unchanged book still
	// republishes after the threshold.
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		stored, found, err := s.cache.GetDepthFingerprint(ctx, d.Venue(), d.Market().String())
		if err != nil {
			s.logger.Warn("failed to read depth fingerprint", zap.Error(err))
			return true
		}
		if found && stored == fingerprint {
			return false
		}
	}
	return true
}
