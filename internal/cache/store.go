// Package cache is the client-side key/value store that query results and
// optimistic writes land in.
package cache

import "sync"

// Store holds one value per query key.
type Store[V any] interface {
	// Get returns the value for key and whether one is present.
	Get(key string) (V, bool)

	// Set replaces the value for key.
	Set(key string, value V)

	// Patch atomically replaces the value for key with fn(current, ok) and
	// returns the new value.
	Patch(key string, fn func(current V, ok bool) V) V

	// Delete drops the value for key.
	Delete(key string)
}

// MemoryStore is an in-process Store.
type MemoryStore[V any] struct {
	mu     sync.RWMutex
	values map[string]V
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{values: make(map[string]V)}
}

func (s *MemoryStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryStore[V]) Patch(key string, fn func(current V, ok bool) V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.values[key]
	next := fn(current, ok)
	s.values[key] = next
	return next
}

func (s *MemoryStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
