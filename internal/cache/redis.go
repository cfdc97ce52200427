// Package cache holds the Redis-backed pieces: recent external search results,
// so a repeated search does not hit the AI provider again, and the seat
// change channel between the worker and the API server.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "external-search:"

// SearchCache stores external flight payloads by search key.
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect opens a Redis client and pings it. It returns a nil client when no
// address is configured.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedis connects to Redis. It returns nil when no address is configured or
// the server does not answer a ping, and callers run without a cache.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*SearchCache, error) {
	rdb, err := Connect(ctx, cfg)
	if err != nil || rdb == nil {
		return nil, err
	}
	return NewSearchCache(rdb, cfg.CacheTTL), nil
}

func NewSearchCache(rdb *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SearchCache{rdb: rdb, ttl: ttl}
}

func Key(searchKey string) string {
	return keyPrefix + searchKey
}

// Get returns the cached payloads. ok is false on a miss or any Redis error.
func (c *SearchCache) Get(ctx context.Context, searchKey string) ([]models.ExternalFlightPayload, bool, error) {
	bs, err := c.rdb.Get(ctx, Key(searchKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read search cache: %w", err)
	}

	var flights []models.ExternalFlightPayload
	if err := json.Unmarshal(bs, &flights); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached search: %w", err)
	}
	return flights, true, nil
}

func (c *SearchCache) Set(ctx context.Context, searchKey string, flights []models.ExternalFlightPayload) error {
	bs, err := json.Marshal(flights)
	if err != nil {
		return fmt.Errorf("failed to encode search: %w", err)
	}
	if err := c.rdb.SetEx(ctx, Key(searchKey), bs, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write search cache: %w", err)
	}
	return nil
}

func (c *SearchCache) Close() error {
	return c.rdb.Close()
}
