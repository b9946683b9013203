package memory

import (
	"context"
	"sync/atomic"

	"github.com/complitracker/complitracker-go/internal/storage"
	"github.com/complitracker/complitracker-go/pkg/cmap"
)

// Store keeps values in a sharded map. Nothing survives the process.
type Store struct {
	items  *cmap.Map[string, []byte]
	closed atomic.Bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{items: cmap.New[string, []byte]()}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	v, ok := s.items.Get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	s.items.Set(key, append([]byte(nil), value...))
	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	s.items.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.items.Count()
}

// Close marks the store closed and drops its contents.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.items.Clear()
	return nil
}
