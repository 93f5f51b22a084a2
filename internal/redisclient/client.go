package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/models"

	"github.com/go-redis/redis/v8"
)

const statsCacheKey = "stats:orders"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCachedStats returns the cached stats snapshot, or (nil, nil) on a
// cache miss.
func (c *Client) GetCachedStats(ctx context.Context) (*models.Stats, error) {
	data, err := c.rdb.Get(ctx, statsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached stats: %w", err)
	}

	var stats models.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, nil
}

// SetCachedStats stores a stats snapshot with a TTL
func (c *Client) SetCachedStats(ctx context.Context, stats *models.Stats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return c.rdb.Set(ctx, statsCacheKey, data, ttl).Err()
}

// InvalidateStats drops the cached stats snapshot. Called after every
// ledger write so reads never serve a stale aggregate past the TTL.
func (c *Client) InvalidateStats(ctx context.Context) error {
	return c.rdb.Del(ctx, statsCacheKey).Err()
}

// AcquireCaptureLock takes a short lock keyed by payment ref. The
// unique index remains the correctness guarantee; the lock only spares
// the database a burst of conflicting inserts on rapid client retries.
func (c *Client) AcquireCaptureLock(ctx context.Context, paymentRef string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:capture:%s", paymentRef), "1", ttl).Result()
}

// ReleaseCaptureLock releases a capture lock
func (c *Client) ReleaseCaptureLock(ctx context.Context, paymentRef string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:capture:%s", paymentRef)).Err()
}
