package otp

import (
	"context"
	"sync"
	"time"

	"custodia/pkg/platform/sentinel"
)

// InMemoryStore is the test and development implementation of Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) Fetch(_ context.Context, agentID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[agentID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) SavePhoneNumber(_ context.Context, agentID, phoneHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[agentID]
	rec.Identity = agentID
	rec.PhoneHash = phoneHash
	s.records[agentID] = rec
	return nil
}

func (s *InMemoryStore) SaveOtp(_ context.Context, agentID, phoneHash, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[agentID]
	if !ok || rec.PhoneHash != phoneHash {
		return sentinel.ErrNotFound
	}
	rec.Otp = &code
	rec.ExpiresAt = &expiresAt
	s.records[agentID] = rec
	return nil
}

func (s *InMemoryStore) Expire(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[agentID]
	if !ok {
		return nil
	}
	rec.Otp = nil
	rec.ExpiresAt = nil
	s.records[agentID] = rec
	return nil
}
