package store

import (
	"context"
	"sync"

	"idbridge/internal/auditlog"
)

type pair struct {
	provider  string
	principal string
}

// InMemory keeps entries per pair in insertion order.
type InMemory struct {
	mu      sync.RWMutex
	logs    map[pair][]*auditlog.LogEntry
	history map[pair][]*auditlog.LoginHistoryEntry
}

func NewInMemory() *InMemory {
	return &InMemory{
		logs:    make(map[pair][]*auditlog.LogEntry),
		history: make(map[pair][]*auditlog.LoginHistoryEntry),
	}
}

func (s *InMemory) InsertLogs(_ context.Context, entries []*auditlog.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		copied := *e
		k := pair{e.ProviderName, e.PrincipalID}
		s.logs[k] = append(s.logs[k], &copied)
	}
	return nil
}

func (s *InMemory) InsertLoginHistory(_ context.Context, entries []*auditlog.LoginHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		copied := *e
		k := pair{e.ProviderName, e.PrincipalID}
		s.history[k] = append(s.history[k], &copied)
	}
	return nil
}

func (s *InMemory) ListLogs(_ context.Context, provider, principal string) ([]*auditlog.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*auditlog.LogEntry{}, s.logs[pair{provider, principal}]...), nil
}

func (s *InMemory) ListLoginHistory(_ context.Context, provider, principal string) ([]*auditlog.LoginHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*auditlog.LoginHistoryEntry{}, s.history[pair{provider, principal}]...), nil
}
