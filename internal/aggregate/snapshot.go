package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
)

// Snapshot is a point-in-time, immutable view of one market's aggregate
// ticker, suitable for caching and transmission. The per-market statistics
// reflect a single consistent state of the aggregator; the cross-market
// figures are read from the shared tables immediately afterwards and may lag
// by one concurrent update.
type Snapshot struct {
	Market             *asset.Pair
	VWAAsk             decimal.NullDecimal
	VWABid             decimal.NullDecimal
	VWALast            decimal.NullDecimal
	VWALast15Min       decimal.NullDecimal
	Low                decimal.NullDecimal
	High               decimal.NullDecimal
	TotalVolume        decimal.Decimal
	VenueVolumes       map[string]decimal.Decimal
	CrossMarketVolume  decimal.Decimal
	PriceTypeVolume    decimal.Decimal
	AllMarketVolumes   map[*asset.Pair]decimal.Decimal
	Timestamp          time.Time
}
