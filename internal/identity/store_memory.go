package identity

import (
	"context"
	"sync"
	"time"

	"custodia/pkg/platform/sentinel"
)

// InMemoryStore is the test and development implementation of Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	byKey map[memoryKey]ExternalIdentifier
}

type memoryKey struct {
	idType      string
	hashedValue string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byKey: make(map[memoryKey]ExternalIdentifier)}
}

func (s *InMemoryStore) Find(_ context.Context, idType, hashedValue string) (ExternalIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.byKey[memoryKey{idType, hashedValue}]
	if !ok {
		return ExternalIdentifier{}, sentinel.ErrNotFound
	}
	return ident, nil
}

func (s *InMemoryStore) Create(_ context.Context, ident ExternalIdentifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{ident.IDType, ident.HashedValue}
	if _, exists := s.byKey[key]; exists {
		return sentinel.ErrConflict
	}
	ident.CreatedAt = time.Now()
	s.byKey[key] = ident
	return nil
}

func (s *InMemoryStore) GetOrCreate(_ context.Context, ident ExternalIdentifier) (ExternalIdentifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{ident.IDType, ident.HashedValue}
	if existing, ok := s.byKey[key]; ok {
		return existing, nil
	}
	ident.CreatedAt = time.Now()
	s.byKey[key] = ident
	return ident, nil
}
