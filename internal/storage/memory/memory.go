// Package memory is a process-local storage.Store, used as the default
// backend and as the fake in tests.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewWithData seeds the store with a copy of data.
func NewWithData(data map[string][]byte) *Store {
	s := New()
	for k, v := range data {
		s.items[k] = append([]byte(nil), v...)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
