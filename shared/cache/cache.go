// Package cache provides a Redis-backed key-value cache holding JSON-encoded values.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values in Redis under optionally prefixed keys.
type Cache struct {
	client *redis.Client
	prefix string
	stats  *Stats
}

// Stats tracks cache statistics.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

// New creates a new cache instance.
func New(client *redis.Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		stats:  &Stats{},
	}
}

// Get decodes the value stored under key into dest.
// It reports false without error on a cache miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&c.stats.Misses, 1)
			return false, nil
		}
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	atomic.AddUint64(&c.stats.Hits, 1)
	return true, nil
}

// Set stores value under key. A zero ttl stores the value without expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache set error: %w", err)
	}

	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

// Replace overwrites the value under key while keeping its remaining expiry.
// It reports false without writing anything when the key does not exist.
func (c *Cache) Replace(ctx context.Context, key string, value any) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	err = c.client.SetArgs(ctx, c.prefix+key, data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache replace error: %w", err)
	}

	atomic.AddUint64(&c.stats.Sets, 1)
	return true, nil
}

// SetIfAbsent stores value under key only when the key does not exist yet.
// It reports whether the value was stored.
func (c *Cache) SetIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	ok, err := c.client.SetNX(ctx, c.prefix+key, data, ttl).Result()
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache setnx error: %w", err)
	}

	if ok {
		atomic.AddUint64(&c.stats.Sets, 1)
	}
	return ok, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = c.prefix + key
	}

	deleted, err := c.client.Del(ctx, fullKeys...).Result()
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache delete error: %w", err)
	}

	atomic.AddUint64(&c.stats.Deletes, uint64(deleted))
	return nil
}

// versionPrefix namespaces the invalidation counter kept next to each key.
const versionPrefix = "version:"

// setIfVersionScript writes KEYS[1] only while the counter at KEYS[2] still
// equals ARGV[1]. ARGV[3] is a TTL in milliseconds, zero for none.
var setIfVersionScript = redis.NewScript(`
if (redis.call('GET', KEYS[2]) or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Version returns the invalidation counter of key. It is zero until the key is
// first invalidated.
func (c *Cache) Version(ctx context.Context, key string) (int64, error) {
	version, err := c.client.Get(ctx, c.prefix+versionPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		atomic.AddUint64(&c.stats.Errors, 1)
		return 0, fmt.Errorf("cache version error: %w", err)
	}
	return version, nil
}

// SetIfVersion stores value under key only if key has not been invalidated
// since version was read. It reports whether the value was stored.
func (c *Cache) SetIfVersion(ctx context.Context, key string, value any, ttl time.Duration, version int64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	stored, err := setIfVersionScript.Run(
		ctx,
		c.client,
		[]string{c.prefix + key, c.prefix + versionPrefix + key},
		strconv.FormatInt(version, 10),
		data,
		strconv.FormatInt(ttl.Milliseconds(), 10),
	).Int()
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache versioned set error: %w", err)
	}

	if stored == 0 {
		return false, nil
	}
	atomic.AddUint64(&c.stats.Sets, 1)
	return true, nil
}

// Invalidate deletes keys and bumps their invalidation counters in one
// transaction. A value read before the call can no longer be stored with
// SetIfVersion.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	deletes := make([]*redis.IntCmd, len(keys))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			deletes[i] = pipe.Del(ctx, c.prefix+key)
			pipe.Incr(ctx, c.prefix+versionPrefix+key)
		}
		return nil
	})
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache invalidate error: %w", err)
	}

	for _, cmd := range deletes {
		atomic.AddUint64(&c.stats.Deletes, uint64(cmd.Val()))
	}
	return nil
}

// GetStats returns the current cache statistics.
func (c *Cache) GetStats() StatsSnapshot {
	hits := atomic.LoadUint64(&c.stats.Hits)
	misses := atomic.LoadUint64(&c.stats.Misses)
	totalGets := hits + misses

	var hitRate float64
	if totalGets > 0 {
		hitRate = float64(hits) / float64(totalGets) * 100
	}

	return StatsSnapshot{
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadUint64(&c.stats.Sets),
		Deletes:   atomic.LoadUint64(&c.stats.Deletes),
		Errors:    atomic.LoadUint64(&c.stats.Errors),
		HitRate:   hitRate,
		TotalGets: totalGets,
	}
}

// Ping checks if the Redis connection is healthy. It doubles as a health check
// for the gRPC health service.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
