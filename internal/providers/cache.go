package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

// CacheStore is a byte-value store with expiry.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore is a CacheStore backed by Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// CachedSource memoizes another Source. Cache errors are logged and bypassed.
type CachedSource struct {
	next   Source
	store  CacheStore
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedSource wraps next with store.
func NewCachedSource(next Source, store CacheStore, ttl time.Duration, logger *logging.Logger) *CachedSource {
	return &CachedSource{next: next, store: store, ttl: ttl, logger: logger}
}

// Series implements Source.
func (c *CachedSource) Series(ctx context.Context, spot models.SpotProfile) ([]models.Conditions, error) {
	var series []models.Conditions
	key := "surfalert:series:" + spot.Slug
	if c.load(ctx, key, &series) && len(series) > 0 {
		return series, nil
	}
	series, err := c.next.Series(ctx, spot)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, series)
	return series, nil
}

// Tides implements Source.
func (c *CachedSource) Tides(ctx context.Context, spot models.SpotProfile) ([]models.TidePoint, error) {
	var tides []models.TidePoint
	key := "surfalert:tides:" + spot.Slug
	if c.load(ctx, key, &tides) && len(tides) > 0 {
		return tides, nil
	}
	tides, err := c.next.Tides(ctx, spot)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, tides)
	return tides, nil
}

func (c *CachedSource) load(ctx context.Context, key string, dst interface{}) bool {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warnf("Cache read failed: %v", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warnf("Discarding corrupt cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *CachedSource) save(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warnf("Cache encode failed for %s: %v", key, err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warnf("Cache write failed: %v", err)
	}
}
