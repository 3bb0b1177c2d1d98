// Package events is the in-process publish/subscribe channel between
// mutation paths and the notification layer. It replaces ambient global
// state with an explicit container: a bounded backlog with a declared
// eviction policy, and non-blocking delivery to subscribers.
package events

import (
	"sync"
	"time"

	"npcfinder/internal/shared"
)

// Event types published on the bus.
const (
	TypeNewRecommendation    = "NEW_RECOMMENDATION"
	TypeRecommendationUpdate = "RECOMMENDATION_UPDATE"
	TypeFriendConnected      = "FRIEND_CONNECTED"
)

type Event struct {
	Type       string
	UserID     string // target user
	ActorID    string // user who caused the event
	Kind       shared.MediaKind
	RefID      int64
	Title      string
	Message    string
	Persistent bool
	At         time.Time
}

const defaultCapacity = 256

type Bus struct {
	mu       sync.Mutex
	backlog  []Event
	capacity int
	subs     map[int]chan Event
	nextSub  int
	closed   bool
}

func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Bus{
		capacity: capacity,
		subs:     make(map[int]chan Event),
	}
}

// Publish appends to the backlog and fans out to subscribers. It never
// blocks: a subscriber that cannot keep up misses events rather than
// stalling the mutation path that published them.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.backlog = append(b.backlog, e)
	if len(b.backlog) > b.capacity {
		b.evictLocked()
	}

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// evictLocked drops the oldest non-persistent event; when every queued event
// is persistent, the oldest one goes anyway so the queue stays bounded.
func (b *Bus) evictLocked() {
	for i, e := range b.backlog {
		if !e.Persistent {
			b.backlog = append(b.backlog[:i], b.backlog[i+1:]...)
			return
		}
	}
	b.backlog = b.backlog[1:]
}

// Subscribe returns a receive channel and an unsubscribe function. The
// channel is buffered; delivery to a full channel is dropped, not retried.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Backlog returns a copy of the retained events, oldest first.
func (b *Bus) Backlog() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.backlog))
	copy(out, b.backlog)
	return out
}

// Close stops publishing and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
