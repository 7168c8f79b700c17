package attempt

import (
	"context"
	"sync"
	"time"
)

// Clock is injectable time for tests.
type Clock func() time.Time

// InMemoryStore implements ratelimit.AttemptStore with an in-process sliding
// window. Used by tests and single-instance deployments without Redis; for
// distributed deployments use RedisStore.
type InMemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	blocks   map[string]time.Time
	clock    Clock
}

type MemoryOption func(*InMemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryOption {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		attempts: make(map[string][]time.Time),
		blocks:   make(map[string]time.Time),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) RecordAttempt(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	cutoff := now.Add(-window)

	kept := s.attempts[key][:0:0]
	for _, ts := range s.attempts[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	s.attempts[key] = kept
	return len(kept), nil
}

func (s *InMemoryStore) Block(_ context.Context, key string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[key] = s.clock().Add(d)
	return nil
}

func (s *InMemoryStore) IsBlocked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.blocks[key]
	if !ok {
		return false, nil
	}
	if s.clock().After(until) {
		delete(s.blocks, key)
		return false, nil
	}
	return true, nil
}
