package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/feed"
)

// Snapshot is the wire form of a feed's current state.
type Snapshot struct {
	Items   any         `json:"items"`
	HasMore bool        `json:"has_more"`
	Loading bool        `json:"loading"`
	Error   string      `json:"error,omitempty"`
	Query   string      `json:"query"`
	Sort    feed.Option `json:"sort"`
}

// feedView erases the feed's item type so sessions of different kinds can
// live in one registry.
type feedView interface {
	Init(query string, sort feed.Option)
	LoadInitial(ctx context.Context)
	TriggerLoad(ctx context.Context)
	SetQuery(ctx context.Context, query string)
	SetSort(ctx context.Context, sort feed.Option)
	Snapshot() Snapshot
}

type view[T any] struct {
	f *feed.Feed[T]
}

func newView[T any](f *feed.Feed[T]) feedView { return view[T]{f: f} }

func (v view[T]) Init(query string, sort feed.Option) { v.f.Init(query, sort) }

func (v view[T]) LoadInitial(ctx context.Context) { v.f.LoadInitial(ctx) }

func (v view[T]) TriggerLoad(ctx context.Context) { v.f.TriggerLoad(ctx) }

func (v view[T]) SetQuery(ctx context.Context, query string) { v.f.SetQuery(ctx, query) }

func (v view[T]) SetSort(ctx context.Context, sort feed.Option) { v.f.SetSort(ctx, sort) }

func (v view[T]) Snapshot() Snapshot {
	return Snapshot{
		Items:   v.f.Items(),
		HasMore: v.f.HasMore(),
		Loading: v.f.Loading(),
		Error:   v.f.Err(),
		Query:   v.f.Query(),
		Sort:    v.f.Sort(),
	}
}

// session pairs a feed with its owner and a debouncer for search input.
// Query changes arrive per keystroke; the debouncer holds the commit until
// typing settles so the store sees one fetch, not one per character.
type session struct {
	view     feedView
	debounce *feed.Debouncer
	userID   string
	lastSeen time.Time
}

// Sessions holds server-side feed state keyed by opaque id. Sessions that
// go idle past the TTL are swept; a swept id simply 404s and the client
// creates a fresh feed.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	debounce time.Duration
	byID     map[string]*session
	log      *zap.Logger
}

func NewSessions(ttl time.Duration, log *zap.Logger) *Sessions {
	return &Sessions{
		ttl:      ttl,
		debounce: feed.DebounceInterval,
		byID:     make(map[string]*session),
		log:      log,
	}
}

// Put registers a feed for userID and returns its session id.
func (s *Sessions) Put(userID string, v feedView) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.byID[id] = &session{
		view:     v,
		debounce: feed.NewDebouncer(s.debounce),
		userID:   userID,
		lastSeen: time.Now(),
	}
	s.mu.Unlock()
	return id
}

// Get returns the session for id if it exists and belongs to userID. A
// hit refreshes the idle timer.
func (s *Sessions) Get(id, userID string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[id]
	if !ok || entry.userID != userID {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry, true
}

// Sweep evicts idle sessions until ctx is cancelled.
func (s *Sessions) Sweep(ctx context.Context) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now())
		}
	}
}

func (s *Sessions) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, entry := range s.byID {
		if now.Sub(entry.lastSeen) > s.ttl {
			entry.debounce.Stop()
			delete(s.byID, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug("feed sessions evicted", zap.Int("count", evicted), zap.Int("remaining", len(s.byID)))
	}
}
