// Package auditlog holds the immutable telemetry recorded per mapping: free
// text log entries and login history rows. Both are only ever written by the
// change-event consumer.
package auditlog

import (
	"time"

	"github.com/google/uuid"

	id "idbridge/pkg/domain"
)

// LogEntry is one free-text log line for a (provider, principal) pair.
// LogID is a caller-supplied correlation value and is not unique in storage.
type LogEntry struct {
	ID           uuid.UUID
	ProviderName string
	PrincipalID  string
	LogID        string
	Message      string
	CreatedAt    time.Time
}

// LoginHistoryEntry records one authentication attempt.
type LoginHistoryEntry struct {
	ID           uuid.UUID
	ProviderName string
	PrincipalID  string
	FlowType     id.FlowType
	Timestamp    time.Time
	Success      bool
	ProviderType *string
	Info         *string
	CreatedAt    time.Time
}
