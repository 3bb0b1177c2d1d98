package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npcfinder/internal/shared"
)

// fakeRedis backs the Client interface with an in-memory map.
type fakeRedis struct {
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprintf("%s", value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func newTestCache(rdb Client) *QueryCache {
	return NewQueryCache(rdb, time.Hour, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
}

func TestQueryCache_SetGetRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	c := newTestCache(rdb)
	ctx := context.Background()

	type payload struct {
		Titles []string `json:"titles"`
	}
	c.Set(ctx, "library:u1:movies", payload{Titles: []string{"Heat", "Alien"}})

	var got payload
	cachedAt, ok := c.Get(ctx, "library:u1:movies", &got)
	require.True(t, ok)
	assert.Equal(t, []string{"Heat", "Alien"}, got.Titles)
	assert.WithinDuration(t, time.Now(), cachedAt, time.Minute)
}

func TestQueryCache_MissOnAbsentKey(t *testing.T) {
	c := newTestCache(newFakeRedis())
	_, ok := c.Get(context.Background(), "nope", nil)
	assert.False(t, ok)
}

func TestQueryCache_CorruptEntryIsMissAndDropped(t *testing.T) {
	rdb := newFakeRedis()
	rdb.data["broken"] = "{not json"
	c := newTestCache(rdb)

	_, ok := c.Get(context.Background(), "broken", nil)
	assert.False(t, ok)
	_, stillThere := rdb.data["broken"]
	assert.False(t, stillThere)
}

func TestQueryCache_Fresh(t *testing.T) {
	rdb := newFakeRedis()
	c := newTestCache(rdb)
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	assert.True(t, c.Fresh(ctx, "k", 5*time.Minute))

	// Move the clock past the staleness threshold
	c.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	assert.False(t, c.Fresh(ctx, "k", 5*time.Minute))

	assert.False(t, c.Fresh(ctx, "absent", 5*time.Minute))
}

func TestQueryCache_InvalidateNamespace(t *testing.T) {
	rdb := newFakeRedis()
	c := newTestCache(rdb)
	ctx := context.Background()

	c.Set(ctx, LibraryKey("u1", shared.KindMovies), "a")
	c.Set(ctx, LibraryKey("u1", shared.KindBooks), "b")
	c.Set(ctx, LibraryKey("u2", shared.KindMovies), "c")

	c.InvalidateNamespace(ctx, LibraryNamespace("u1"))

	_, ok := c.Get(ctx, LibraryKey("u1", shared.KindMovies), nil)
	assert.False(t, ok)
	_, ok = c.Get(ctx, LibraryKey("u1", shared.KindBooks), nil)
	assert.False(t, ok)
	// other users' entries survive
	_, ok = c.Get(ctx, LibraryKey("u2", shared.KindMovies), nil)
	assert.True(t, ok)
}

func TestQueryCache_NilReceiverIsNoop(t *testing.T) {
	var c *QueryCache
	ctx := context.Background()
	c.Set(ctx, "k", "v")
	_, ok := c.Get(ctx, "k", nil)
	assert.False(t, ok)
	c.InvalidateNamespace(ctx, "k")
}
