package auditlog

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import "context"

// Store appends entries. Each Insert call writes its whole slice or nothing.
type Store interface {
	InsertLogs(ctx context.Context, entries []*LogEntry) error
	InsertLoginHistory(ctx context.Context, entries []*LoginHistoryEntry) error
	ListLogs(ctx context.Context, provider, principal string) ([]*LogEntry, error)
	ListLoginHistory(ctx context.Context, provider, principal string) ([]*LoginHistoryEntry, error)
}
