package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"idbridge/internal/mapping"
	"idbridge/pkg/platform/sentinel"
)

type pair struct {
	provider  string
	principal string
}

// InMemory looks mappings up by the exact (provider, principal) pair and
// enforces the unique key on save. The mutex serializes concurrent login
// updates for the same pair.
type InMemory struct {
	mu       sync.RWMutex
	mappings map[pair]*mapping.Mapping
	owners   map[string]pair
}

func NewInMemory() *InMemory {
	return &InMemory{
		mappings: make(map[pair]*mapping.Mapping),
		owners:   make(map[string]pair),
	}
}

func (s *InMemory) FindByKey(_ context.Context, provider, principal string) (*mapping.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[pair{provider, principal}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

// Save inserts a new mapping or changes the target of an existing one.
// Login details, the log reference and the ID of an existing mapping are
// kept. A unique key already held by another pair is a conflict.
func (s *InMemory) Save(_ context.Context, m *mapping.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pair{m.ProviderName, m.PrincipalID}
	key := keyOf(m)
	if owner, taken := s.owners[key]; taken && owner != p {
		return sentinel.ErrConflict
	}
	if existing, ok := s.mappings[p]; ok {
		existing.TargetIdentifier = m.TargetIdentifier
		existing.UpdatedAt = m.UpdatedAt
		return nil
	}

	copied := *m
	copied.UniqueKey = key
	s.mappings[p] = &copied
	s.owners[key] = p
	return nil
}

func (s *InMemory) TouchLogReference(_ context.Context, provider, principal string, logRef uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[pair{provider, principal}]
	if !ok {
		return false, nil
	}
	ref := logRef
	m.LastLogReference = &ref
	m.UpdatedAt = at
	return true, nil
}

func (s *InMemory) RecordLogin(_ context.Context, provider, principal string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[pair{provider, principal}]
	if !ok {
		return false, nil
	}
	m.LoginCount++
	loginAt := at
	m.LastLoginAt = &loginAt
	m.UpdatedAt = at
	return true, nil
}

func keyOf(m *mapping.Mapping) string {
	if m.UniqueKey != "" {
		return m.UniqueKey
	}
	return mapping.CompositeKey(m.ProviderName, m.PrincipalID)
}
