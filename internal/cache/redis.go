package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/djstage/backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps redis.Client with centralized connection pooling.
type Client struct {
	rdb *redis.Client
}

// New creates and pings a Redis client. host defaults to localhost, port
// to 6379.
func New(host, port, password string) (*Client, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Log.Info("✅ Redis client connected successfully",
		zap.String("address", addr),
	)

	return &Client{rdb: rdb}, nil
}

// Close shuts down the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// TrendingCache caches serialized ranking list responses. All methods are
// nil-safe so the server runs unchanged without Redis.
type TrendingCache struct {
	client *Client
	ttl    time.Duration
}

// NewTrendingCache creates a cache with the given TTL (default 30s).
func NewTrendingCache(client *Client, ttl time.Duration) *TrendingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TrendingCache{client: client, ttl: ttl}
}

// ListKey builds the cache key for a ranking list query.
func ListKey(period, contentType string, limit int) string {
	if contentType == "" {
		contentType = "all"
	}
	return fmt.Sprintf("trending:list:%s:%s:%d", period, contentType, limit)
}

// Get returns the cached payload for key, or false on miss or error.
func (t *TrendingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if t == nil || t.client == nil {
		return nil, false
	}
	payload, err := t.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores payload under key for the configured TTL. Failures are logged
// and otherwise ignored: the cache is an optimization, not a dependency.
func (t *TrendingCache) Set(ctx context.Context, key string, payload []byte) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.rdb.Set(ctx, key, payload, t.ttl).Err(); err != nil {
		logger.WarnWithFields("failed to cache trending list", err)
	}
}

// Invalidate drops all cached ranking lists. Called after any registry or
// ledger mutation so reads never serve counters older than the TTL implies.
func (t *TrendingCache) Invalidate(ctx context.Context) {
	if t == nil || t.client == nil {
		return
	}
	iter := t.client.rdb.Scan(ctx, 0, "trending:list:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := t.client.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logger.WarnWithFields("failed to invalidate trending cache key", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.WarnWithFields("trending cache invalidation scan failed", err)
	}
}
