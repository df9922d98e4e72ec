// Package cache wraps the Redis client used for published snapshots, depth
// deduplication fingerprints and trade identity markers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketstem/config"
)

const (
	snapshotHashKey    = "aggregate_tickers"
	fingerprintHashKey = "depth_fingerprints"
	tradeSeenKeyPrefix = "trade_seen"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// PutSnapshot stores the serialized aggregate snapshot under its market
// symbol.
func (c *Client) PutSnapshot(ctx context.Context, market string, payload []byte) error {
	return c.rdb.HSet(ctx, snapshotHashKey, market, payload).Err()
}

// GetSnapshot returns the stored snapshot payload for the market, ok=false
// when none exists.
func (c *Client) GetSnapshot(ctx context.Context, market string) ([]byte, bool, error) {
	payload, err := c.rdb.HGet(ctx, snapshotHashKey, market).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// PutDepthFingerprint stores the deduplication fingerprint for a venue's
// order book.
func (c *Client) PutDepthFingerprint(ctx context.Context, venue, market, fingerprint string) error {
	return c.rdb.HSet(ctx, fingerprintHashKey, depthField(venue, market), fingerprint).Err()
}

// GetDepthFingerprint returns the stored fingerprint, ok=false when none
// exists.
func (c *Client) GetDepthFingerprint(ctx context.Context, venue, market string) (string, bool, error) {
	fingerprint, err := c.rdb.HGet(ctx, fingerprintHashKey, depthField(venue, market)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return fingerprint, true, nil
}

// MarkTradeSeen records the trade id and reports whether it was new. Markers
// expire so the key space stays bounded.
func (c *Client) MarkTradeSeen(ctx context.Context, venue, market, tradeID string,
	ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("%s:%s:%s:%s", tradeSeenKeyPrefix, venue, market, tradeID)
	return c.rdb.SetNX(ctx, key, 1, ttl).Result()
}

// Publish sends the payload to subscribers of the channel.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func depthField(venue, market string) string {
	return venue + ":" + market
}
