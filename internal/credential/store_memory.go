package credential

import (
	"context"
	"sync"
	"time"

	"custodia/pkg/platform/sentinel"
)

// InMemoryStore is the test and development implementation of Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{creds: make(map[string]Credential)}
}

func (s *InMemoryStore) Fetch(_ context.Context, agentID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[agentID]
	if !ok {
		return Credential{}, sentinel.ErrNotFound
	}
	return cred, nil
}

func (s *InMemoryStore) Create(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creds[cred.Identity]; exists {
		return sentinel.ErrConflict
	}
	cred.CreatedAt = time.Now()
	s.creds[cred.Identity] = cred
	return nil
}

func (s *InMemoryStore) Exists(_ context.Context, agentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.creds[agentID]
	return ok, nil
}

func (s *InMemoryStore) Delete(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[agentID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.creds, agentID)
	return nil
}
