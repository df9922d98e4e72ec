// Package server exposes the read API over HTTP: assets, markets, aggregate
// tickers, conversion and market-order simulation, plus health and metrics
// endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketstem/config"
	"marketstem/internal/aggregate"
	"marketstem/internal/asset"
	"marketstem/internal/convert"
	"marketstem/internal/depth"
	"marketstem/pkg/cache"
	"marketstem/pkg/storage/postgres"
)

type Server struct {
	logger   *zap.Logger
	assets   *asset.Registry
	book     *aggregate.Book
	resolver *convert.Resolver
	depths   *depth.Store
	db       *postgres.PostgresClient
	cache    *cache.Client
}

func New(logger *zap.Logger, assets *asset.Registry, book *aggregate.Book,
	resolver *convert.Resolver, depths *depth.Store, db *postgres.PostgresClient,
	cacheClient *cache.Client) *Server {
	return &Server{
		logger:   logger,
		assets:   assets,
		book:     book,
		resolver: resolver,
		depths:   depths,
		db:       db,
		cache:    cacheClient,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/assets", s.handleAssets).Methods(http.MethodGet)
	r.HandleFunc("/api/markets", s.handleMarkets).Methods(http.MethodGet)
	r.HandleFunc("/api/ticker/{market}", s.handleTicker).Methods(http.MethodGet)
	r.HandleFunc("/api/convert", s.handleConvert).Methods(http.MethodGet)
	r.HandleFunc("/api/spend", s.handleSpend).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
