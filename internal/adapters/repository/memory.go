package repository

import (
	"context"
	"sync"
)

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithSeed pre-populates the store, mainly for tests.
func WithSeed(data map[string][]byte) Option {
	return func(s *InMemoryStore) {
		for k, v := range data {
			s.data[k] = append([]byte(nil), v...)
		}
	}
}

// InMemoryStore implements Store with a mutex-guarded map.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{data: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the stored bytes so callers cannot alias the
// store's internal state.
func (s *InMemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save stores a copy of data under key.
func (s *InMemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}
