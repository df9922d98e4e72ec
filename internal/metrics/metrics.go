// Package metrics defines the Prometheus instruments for the aggregation
// pipeline. They register on the default registry and are served by the HTTP
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TickersIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketstem_tickers_ingested_total",
		Help: "Venue tickers accepted into the aggregation book.",
	}, []string{"venue"})

	DepthsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketstem_depths_stored_total",
		Help: "Order book snapshots stored per venue.",
	}, []string{"venue"})

	DepthsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketstem_depths_published_total",
		Help: "Order book snapshots published after deduplication.",
	})

	SnapshotsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketstem_snapshots_published_total",
		Help: "Aggregate ticker snapshots published.",
	})

	TradesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketstem_trades_published_total",
		Help: "Deduplicated public trades published.",
	})

	TradesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketstem_trades_duplicate_total",
		Help: "Public trades dropped as already seen.",
	})

	ConversionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketstem_conversion_requests_total",
		Help: "Conversion rate resolutions by outcome.",
	}, []string{"outcome"})
)
