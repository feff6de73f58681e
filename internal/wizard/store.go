package wizard

import (
	"context"
	"sync"
	"time"
)

// Store keeps wizard states between requests, keyed by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	state   State
	savedAt time.Time
}

// MemoryStore is a process-local Store. Like RedisStore, an entry lives
// for ttl after its last Save.
type MemoryStore struct {
	mu        sync.Mutex
	states    map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// MemoryStoreOption customises a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock overrides the clock used for expiry.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store. A non-positive ttl uses
// DefaultSessionTTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &MemoryStore{
		states: make(map[string]memoryEntry),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.states[sessionID]
	if !ok {
		return State{}, false, nil
	}
	if s.expired(e, s.now()) {
		delete(s.states, sessionID)
		return State{}, false, nil
	}
	return e.state.clone(), true, nil
}

// Save stores state and, at most once per ttl, drops every expired entry.
func (s *MemoryStore) Save(_ context.Context, sessionID string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.states[sessionID] = memoryEntry{state: state.clone(), savedAt: now}
	if now.Sub(s.lastSweep) >= s.ttl {
		s.sweepLocked(now)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports how many sessions are held, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.states {
		if s.expired(e, now) {
			delete(s.states, id)
			removed++
		}
	}
	s.lastSweep = now
	return removed
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return now.Sub(e.savedAt) >= s.ttl
}
