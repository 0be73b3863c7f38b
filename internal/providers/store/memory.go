package store

import (
	"context"
	"sync"

	"idbridge/internal/providers"
)

// InMemory is a process-local provider registry.
type InMemory struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewInMemory(names ...string) *InMemory {
	s := &InMemory{names: make(map[string]string)}
	for _, n := range names {
		if key := providers.Normalize(n); key != "" {
			s.names[key] = n
		}
	}
	return s
}

func (s *InMemory) Existing(_ context.Context, names []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(names))
	for _, n := range names {
		key := providers.Normalize(n)
		if _, ok := s.names[key]; ok {
			out[key] = true
		}
	}
	return out, nil
}

func (s *InMemory) Register(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[providers.Normalize(name)] = name
	return nil
}

func (s *InMemory) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, providers.Normalize(name))
	return nil
}
