package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheHelper provides cache-aside operations for one key namespace.
// A nil client degrades every operation gracefully so the service runs
// without redis.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

// CacheConfig pairs a key prefix with its TTL.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Assessment reads are hot during an active attempt
	AssessmentCacheConfig = CacheConfig{TTL: 5 * time.Minute, Prefix: "assessment:"}

	// Question sets are immutable after ingestion, until the sweep deletes them
	QuestionCacheConfig = CacheConfig{TTL: 5 * time.Minute, Prefix: "question:"}

	// Analytics rollups; invalidated on every write for the owning user
	AnalyticsCacheConfig = CacheConfig{TTL: 10 * time.Minute, Prefix: "analytics:"}

	// Short-lived odds and ends
	FastCacheConfig = CacheConfig{TTL: 2 * time.Minute, Prefix: "fast:"}
)

func (c *CacheHelper) key(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes keys from cache.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.key(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// InvalidatePattern removes all keys matching a pattern, using SCAN to
// avoid blocking redis.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.key(pattern)
	var cursor uint64
	var keys []string

	for {
		scanKeys, next, err := c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan error: %w", err)
		}
		keys = append(keys, scanKeys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// CacheOrExecute implements the cache-aside pattern: return the cached
// value if present, otherwise execute fetchFunc and cache its result.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	// Cache write failures must not fail the read path
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// CacheManager bundles the helpers for each namespace.
type CacheManager struct {
	Assessment *CacheHelper
	Question   *CacheHelper
	Analytics  *CacheHelper
	Fast       *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Assessment: NewCacheHelper(client, AssessmentCacheConfig.Prefix),
		Question:   NewCacheHelper(client, QuestionCacheConfig.Prefix),
		Analytics:  NewCacheHelper(client, AnalyticsCacheConfig.Prefix),
		Fast:       NewCacheHelper(client, FastCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Fast.client == nil {
		return ErrCacheNotAvailable
	}
	if _, err := cm.Fast.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
