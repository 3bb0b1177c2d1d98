// Package prefs persists per-user list preferences (page size, filter and
// sort selection) across sessions, keyed by a caller-supplied namespace.
// Reads always succeed: a missing or corrupt entry silently becomes the
// caller's defaults.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefs is what survives between sessions for one list view.
type Prefs struct {
	PageSize int    `json:"page_size"`
	Filter   string `json:"filter,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// Client is the slice of the go-redis API the store needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Store struct {
	rdb    Client
	logger *slog.Logger
}

func NewStore(rdb Client, logger *slog.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func key(userID, namespace string) string {
	return fmt.Sprintf("prefs:%s:%s", userID, namespace)
}

// Load returns the stored preferences for (user, namespace), falling back to
// defaults field-by-field. Corrupt entries are treated the same as missing
// ones; no error ever reaches the caller.
func (s *Store) Load(ctx context.Context, userID, namespace string, defaults Prefs) Prefs {
	if s == nil || s.rdb == nil {
		return defaults
	}
	raw, err := s.rdb.Get(ctx, key(userID, namespace)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("prefs load failed", "namespace", namespace, "error", err)
		}
		return defaults
	}
	var stored Prefs
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Debug("prefs entry corrupt, using defaults", "namespace", namespace)
		return defaults
	}
	if stored.PageSize < 1 {
		stored.PageSize = defaults.PageSize
	}
	if stored.Filter == "" {
		stored.Filter = defaults.Filter
	}
	if stored.Sort == "" {
		stored.Sort = defaults.Sort
	}
	return stored
}

// Save persists preferences with no expiry. Failures are logged and
// swallowed; losing a preference write never fails the request.
func (s *Store) Save(ctx context.Context, userID, namespace string, p Prefs) {
	if s == nil || s.rdb == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key(userID, namespace), raw, 0).Err(); err != nil {
		s.logger.Debug("prefs save failed", "namespace", namespace, "error", err)
	}
}
