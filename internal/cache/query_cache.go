// Package cache is the key-addressed cache of server responses. Entries are
// JSON envelopes carrying their own cached-at timestamp so freshness checks
// do not depend on Redis TTL bookkeeping, and invalidation works on key
// namespaces (prefixes) rather than full key enumeration.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the slice of the go-redis API the cache uses. Narrow on purpose:
// tests implement it with canned command results.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Payload  json.RawMessage `json:"payload"`
}

type QueryCache struct {
	rdb    Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time // swapped in tests
}

func NewQueryCache(rdb Client, ttl time.Duration, logger *slog.Logger) *QueryCache {
	return &QueryCache{rdb: rdb, ttl: ttl, logger: logger, now: time.Now}
}

// Get unmarshals a cached payload into dest. A missing or corrupt entry is a
// miss, never an error; corrupt entries are dropped so the next Set rebuilds
// them cleanly.
func (c *QueryCache) Get(ctx context.Context, key string, dest any) (time.Time, bool) {
	if c == nil || c.rdb == nil {
		return time.Time{}, false
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, false
	}
	if err != nil {
		c.logger.Debug("cache get failed", "key", key, "error", err)
		return time.Time{}, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.logger.Debug("cache entry corrupt, dropping", "key", key)
		c.rdb.Del(ctx, key)
		return time.Time{}, false
	}
	if dest != nil {
		if err := json.Unmarshal(e.Payload, dest); err != nil {
			c.rdb.Del(ctx, key)
			return time.Time{}, false
		}
	}
	return e.CachedAt, true
}

// Set stores value under key with the configured TTL. Failures are logged
// and swallowed: the cache is never allowed to fail a request.
func (c *QueryCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache marshal failed", "key", key, "error", err)
		return
	}
	raw, err := json.Marshal(entry{CachedAt: c.now(), Payload: payload})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// Fresh reports whether key holds an entry younger than maxAge. Used by the
// prefetch scheduler to skip warming a cache that is still warm.
func (c *QueryCache) Fresh(ctx context.Context, key string, maxAge time.Duration) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	cachedAt, ok := c.Get(ctx, key, nil)
	if !ok {
		return false
	}
	return c.now().Sub(cachedAt) < maxAge
}

// InvalidateNamespace deletes every key under prefix. SCAN returns keys in
// batches without blocking, mirroring how large keyspaces have to be walked.
func (c *QueryCache) InvalidateNamespace(ctx context.Context, prefix string) {
	if c == nil || c.rdb == nil {
		return
	}
	pattern := prefix + "*"
	var cursor uint64
	for {
		keys, nextCursor, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.logger.Debug("cache scan failed", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.logger.Debug("cache delete failed", "pattern", pattern, "error", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return
		}
	}
}
