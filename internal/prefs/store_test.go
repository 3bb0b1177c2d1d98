package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeRedis struct {
	data map[string]string
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

func newTestStore() (*Store, *fakeRedis) {
	rdb := &fakeRedis{data: make(map[string]string)}
	return NewStore(rdb, slog.New(slog.NewTextHandler(&strings.Builder{}, nil))), rdb
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, "u1", "library:movies", Prefs{PageSize: 25, Filter: "watched", Sort: "title:asc"})

	got := s.Load(ctx, "u1", "library:movies", Prefs{PageSize: 10})
	assert.Equal(t, 25, got.PageSize)
	assert.Equal(t, "watched", got.Filter)
	assert.Equal(t, "title:asc", got.Sort)
}

func TestStore_MissingEntryYieldsDefaults(t *testing.T) {
	s, _ := newTestStore()
	got := s.Load(context.Background(), "u1", "library:books", Prefs{PageSize: 10, Sort: "added:desc"})
	assert.Equal(t, 10, got.PageSize)
	assert.Equal(t, "added:desc", got.Sort)
}

func TestStore_CorruptEntryYieldsDefaults(t *testing.T) {
	s, rdb := newTestStore()
	rdb.data["prefs:u1:library:games"] = "][ definitely not json"

	got := s.Load(context.Background(), "u1", "library:games", Prefs{PageSize: 10})
	assert.Equal(t, 10, got.PageSize)
}

func TestStore_ZeroPageSizeFallsBack(t *testing.T) {
	s, rdb := newTestStore()
	rdb.data["prefs:u1:library:music"] = `{"page_size":0}`

	got := s.Load(context.Background(), "u1", "library:music", Prefs{PageSize: 10})
	assert.Equal(t, 10, got.PageSize)
}

func TestStore_NamespacesIsolated(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, "u1", "library:movies", Prefs{PageSize: 25})
	got := s.Load(ctx, "u1", "library:books", Prefs{PageSize: 10})
	assert.Equal(t, 10, got.PageSize)

	// Same namespace, different user
	got = s.Load(ctx, "u2", "library:movies", Prefs{PageSize: 10})
	assert.Equal(t, 10, got.PageSize)
}
