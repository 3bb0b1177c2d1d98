package prefetch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"npcfinder/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

// Debounce windows are scaled down from the production 300ms to keep the
// tests fast; the properties are window-size independent.

func TestScheduler_RapidTriggersCollapseToOneFetch(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(nil, 60*time.Millisecond, 5*time.Minute, testLogger())
	defer s.Close()
	s.Register(shared.KindMovies, func(ctx context.Context, userID string) (any, error) {
		calls.Add(1)
		return "warm", nil
	})

	// 5 triggers inside the window
	for i := 0; i < 5; i++ {
		s.Trigger(shared.KindMovies, "u1")
		time.Sleep(10 * time.Millisecond)
	}

	// Nothing fires until the window after the LAST trigger has elapsed
	assert.Equal(t, int32(0), calls.Load())
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_DistinctKeysFireIndependently(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(nil, 20*time.Millisecond, 5*time.Minute, testLogger())
	defer s.Close()
	warm := func(ctx context.Context, userID string) (any, error) {
		calls.Add(1)
		return nil, nil
	}
	s.Register(shared.KindMovies, warm)
	s.Register(shared.KindBooks, warm)

	s.Trigger(shared.KindMovies, "u1")
	s.Trigger(shared.KindBooks, "u1")
	s.Trigger(shared.KindMovies, "u2")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScheduler_EmptyUserIsNoop(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(nil, 10*time.Millisecond, 5*time.Minute, testLogger())
	defer s.Close()
	s.Register(shared.KindGames, func(ctx context.Context, userID string) (any, error) {
		calls.Add(1)
		return nil, nil
	})

	s.Trigger(shared.KindGames, "")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestScheduler_UnregisteredKindIsNoop(t *testing.T) {
	s := NewScheduler(nil, 10*time.Millisecond, 5*time.Minute, testLogger())
	defer s.Close()
	// must not panic
	s.Trigger(shared.KindMusic, "u1")
	time.Sleep(30 * time.Millisecond)
}

func TestScheduler_WarmFailureIsSwallowed(t *testing.T) {
	s := NewScheduler(nil, 10*time.Millisecond, 5*time.Minute, testLogger())
	defer s.Close()
	s.Register(shared.KindMovies, func(ctx context.Context, userID string) (any, error) {
		return nil, errors.New("provider down")
	})

	s.Trigger(shared.KindMovies, "u1")
	time.Sleep(50 * time.Millisecond)
	// nothing to assert beyond "did not panic"; the error stays internal
}

func TestScheduler_CloseCancelsPendingTimers(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(nil, 30*time.Millisecond, 5*time.Minute, testLogger())
	s.Register(shared.KindBooks, func(ctx context.Context, userID string) (any, error) {
		calls.Add(1)
		return nil, nil
	})

	s.Trigger(shared.KindBooks, "u1")
	s.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// triggers after Close stay dead
	s.Trigger(shared.KindBooks, "u1")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
