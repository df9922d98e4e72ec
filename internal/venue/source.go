// Package venue defines the pull-based venue integration surface: a Source
// exposes whatever market data a venue can serve, and a Poller drains sources
// into the aggregation pipeline on a schedule.
package venue

import (
	"context"

	"marketstem/internal/asset"
	"marketstem/internal/depth"
	"marketstem/internal/marketdata"
)

// Source is the minimum surface a venue integration provides. Venues with
// more data implement the optional capability interfaces below; callers probe
// with type assertions instead of switching on a venue identifier.
type Source interface {
	// ID identifies the venue in stored and published data.
	ID() string

	// Markets lists the markets the venue currently serves.
	Markets(ctx context.Context) ([]*asset.Pair, error)

	// Ticker fetches the venue's current ticker for the market. ok is false
	// when the venue has no ticker for it.
	Ticker(ctx context.Context, market *asset.Pair) (marketdata.Ticker, bool, error)
}

// DepthSource is implemented by venues that serve order book snapshots.
type DepthSource interface {
	Depth(ctx context.Context, market *asset.Pair) (*depth.Depth, bool, error)
}

// TradeSource is implemented by venues that serve public trade history.
// sinceID is the last trade already consumed; implementations return only
// newer trades, oldest first.
type TradeSource interface {
	Trades(ctx context.Context, market *asset.Pair, sinceID string) ([]marketdata.Trade, error)
}
