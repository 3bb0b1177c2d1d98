// Package prefetch warms the query cache ahead of navigation. A hover-intent
// signal from the client schedules a debounced background fetch; rapid
// retriggering keeps pushing the timer back so traversing several targets
// fires at most one fetch per (kind, user) key. Prefetching is strictly
// best-effort: failures are swallowed and the eventual real fetch is never
// blocked or delayed.
package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"npcfinder/internal/cache"
	"npcfinder/internal/shared"
)

// WarmFunc produces the payload to cache for one user.
type WarmFunc func(ctx context.Context, userID string) (any, error)

const warmTimeout = 10 * time.Second

type Scheduler struct {
	cache     *cache.QueryCache
	debounce  time.Duration
	staleness time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	warmers map[shared.MediaKind]WarmFunc
	closed  bool
}

func NewScheduler(qc *cache.QueryCache, debounce, staleness time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cache:     qc,
		debounce:  debounce,
		staleness: staleness,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
		warmers:   make(map[shared.MediaKind]WarmFunc),
	}
}

// Register installs the warm function for one media kind.
func (s *Scheduler) Register(kind shared.MediaKind, warm WarmFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warmers[kind] = warm
}

// Trigger records hover intent for (kind, user). The previous pending timer
// for the same key is stopped, not abandoned, so superseded invocations
// cannot leak or fire late.
func (s *Scheduler) Trigger(kind shared.MediaKind, userID string) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.warmers[kind]; !ok {
		return
	}

	key := fmt.Sprintf("%s|%s", kind, userID)
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, key)
		closed := s.closed
		warm := s.warmers[kind]
		s.mu.Unlock()
		if closed || warm == nil {
			return
		}
		s.fire(kind, userID, warm)
	})
}

func (s *Scheduler) fire(kind shared.MediaKind, userID string, warm WarmFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	cacheKey := cache.LibraryKey(userID, kind)
	if s.cache.Fresh(ctx, cacheKey, s.staleness) {
		return
	}

	payload, err := warm(ctx, userID)
	if err != nil {
		// best-effort: never surfaces past a debug line
		s.logger.Debug("prefetch failed", "kind", kind, "user_id", userID, "error", err)
		return
	}
	s.cache.Set(ctx, cacheKey, payload)
}

// Close stops every pending timer. Triggers after Close are no-ops.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
