package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"marketstem/config"
	"marketstem/internal/aggregate"
	"marketstem/internal/asset"
	"marketstem/internal/convert"
	"marketstem/internal/depth"
	"marketstem/internal/server"
	"marketstem/internal/stream"
	"marketstem/internal/venue"
	"marketstem/pkg/cache"
	"marketstem/pkg/feed"
	"marketstem/pkg/storage/postgres"
)

// StartCollector initializes the market data pipeline: storage, the
// aggregation book with its conversion resolver, the WebSocket feed, the
// venue pollers and the HTTP API.
func StartCollector(cfg *config.Config, logger *zap.Logger) error {

	// Initialize PostgreSQL client
	postgresClient, err := postgres.InitializeAndMigrateSnapshotRecord(cfg.Postgres, true)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Initialize Redis client
	cacheClient := cache.NewClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = cacheClient.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Aggregation core. The resolver reads rates from the book and the book
	// uses the resolver to invert reverse-oriented tickers, so the converter
	// attaches after both exist.
	assets := asset.NewRegistry(logger)
	book := aggregate.NewBook(cfg.Aggregation.VWAPWindow, logger)
	resolver := convert.NewResolver(assets, book, cfg.Aggregation.MaxProxyHops)
	book.BindConverter(resolver)
	depthStore := depth.NewStore()

	tickers := NewTickerService(logger, book, cacheClient, postgresClient,
		cfg.Aggregation.SnapshotChannel, cfg.Aggregation.PublishInterval)
	depths := NewDepthService(logger, depthStore, cacheClient,
		cfg.Aggregation.DepthChannel, cfg.Aggregation.DepthRepublish)
	trades := NewTradeService(logger, cacheClient,
		cfg.Aggregation.TradeChannel, cfg.Aggregation.TradeMarkerTTL)

	sinks := stream.Sinks{
		Tickers: tickers.Ingest,
		Depths:  depths.Ingest,
		Trades:  trades.Ingest,
	}

	// Connect to the push feed
	wsClient := feed.NewWSClient(cfg.Feed.URL, cfg.Feed.Topics, logger)
	wsClient.SetMessageHandler(stream.MakeMessageHandler(logger, assets, sinks))
	if err := wsClient.Connect(); err != nil {
		return err
	}
	go wsClient.Listen() // explicitly start listener

	// Start one poller per configured pull venue
	ctx := context.Background()
	for _, vc := range cfg.Venues {
		source := venue.NewRESTSource(vc.ID, vc.BaseURL, vc.Timeout, assets, logger)
		poller := venue.NewPoller(source, sinks, vc.PollInterval, vc.RequestsPerSecond, logger)
		go poller.Run(ctx)
	}

	// Periodically print stored depth count for visibility
	go func() {
		for {
			count := depthStore.CountAll()
			logger.Info("current stored depths", zap.Int("count", count))

			time.Sleep(5 * time.Second)
		}
	}()

	// Prune stored snapshots past the retention period
	go func() {
		ticker := time.NewTicker(cfg.Aggregation.RetentionSweep)
		defer ticker.Stop()
		for range ticker.C {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			before := time.Now().Add(-cfg.Aggregation.RetentionPeriod)
			if err := postgresClient.DeleteOldSnapshots(sweepCtx, before); err != nil {
				logger.Warn("failed to prune old snapshots", zap.Error(err))
			}
			cancel()
		}
	}()

	// Serve the read API
	api := server.New(logger, assets, book, resolver, depthStore, postgresClient, cacheClient)
	go func() {
		if err := api.Run(ctx, cfg.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	return nil
}
