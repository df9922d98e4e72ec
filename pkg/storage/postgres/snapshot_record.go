package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotRecord is one published aggregate ticker snapshot stored in the
// database. Prices and volumes persist as numerics to keep decimal precision.
type SnapshotRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Market    string    `gorm:"type:text;not null;index:idx_snapshot_market;index:idx_market_timestamp,unique"`
	Timestamp time.Time `gorm:"not null;index:idx_market_timestamp,unique"`

	VWAAsk       decimal.NullDecimal `gorm:"type:numeric"`
	VWABid       decimal.NullDecimal `gorm:"type:numeric"`
	VWALast      decimal.NullDecimal `gorm:"type:numeric"`
	VWALastTrail decimal.NullDecimal `gorm:"type:numeric"`

	Low  decimal.NullDecimal `gorm:"type:numeric"`
	High decimal.NullDecimal `gorm:"type:numeric"`

	TotalVolume       decimal.Decimal `gorm:"type:numeric;not null"`
	CrossMarketVolume decimal.Decimal `gorm:"type:numeric;not null"`
	PriceTypeVolume   decimal.Decimal `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (SnapshotRecord) TableName() string {
	return "aggregate_ticker_record"
}
