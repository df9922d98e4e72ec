package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"marketstem/internal/aggregate"
)

func (p *PostgresClient) InsertSnapshot(ctx context.Context, record *SnapshotRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "market"},
			{Name: "timestamp"},
		},
		DoNothing: true,
	}).Create(record)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return fmt.Errorf(
			"duplicate snapshot skipped: market=%s timestamp=%s",
			record.Market,
			record.Timestamp.Format(time.RFC3339),
		)
	}

	return nil
}

// LatestSnapshot returns the most recently recorded snapshot for the market.
func (p *PostgresClient) LatestSnapshot(ctx context.Context, market string) (*SnapshotRecord, error) {
	var record SnapshotRecord
	err := p.DB.WithContext(ctx).
		Where("market = ?", market).
		Order("timestamp DESC").
		First(&record).Error

	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SnapshotsBetween returns the market's snapshots within the time range,
// oldest first.
func (p *PostgresClient) SnapshotsBetween(ctx context.Context, market string,
	from, to time.Time) ([]SnapshotRecord, error) {
	var records []SnapshotRecord
	err := p.DB.WithContext(ctx).
		Where("market = ? AND timestamp >= ? AND timestamp < ?", market, from, to).
		Order("timestamp ASC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *PostgresClient) DeleteOldSnapshots(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&SnapshotRecord{}).Error
}

// ToSnapshotRecord converts an aggregate snapshot into its DB representation.
func ToSnapshotRecord(snap aggregate.Snapshot) *SnapshotRecord {
	return &SnapshotRecord{
		Market:            snap.Market.String(),
		Timestamp:         snap.Timestamp,
		VWAAsk:            snap.VWAAsk,
		VWABid:            snap.VWABid,
		VWALast:           snap.VWALast,
		VWALastTrail:      snap.VWALast15Min,
		Low:               snap.Low,
		High:              snap.High,
		TotalVolume:       snap.TotalVolume,
		CrossMarketVolume: snap.CrossMarketVolume,
		PriceTypeVolume:   snap.PriceTypeVolume,
	}
}
