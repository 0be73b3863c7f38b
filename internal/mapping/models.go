package mapping

import (
	"time"

	"github.com/google/uuid"

	"idbridge/internal/schema"
)

// Mapping links a principal of the host application to an identity in an
// external system. At most one Mapping exists per (provider, principal).
type Mapping struct {
	ID               uuid.UUID
	ProviderName     string
	PrincipalID      string
	TargetIdentifier string
	UniqueKey        string
	LastLogReference *uuid.UUID
	LastLoginAt      *time.Time
	LoginCount       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CompositeKey is the value stored in UniqueKey for a pair.
func CompositeKey(provider, principal string) string {
	return provider + "_" + principal
}

func (m *Mapping) ProviderReference() string {
	return m.ProviderName
}

// Get and Set expose the string columns used by the save triggers.
func (m *Mapping) Get(field string) string {
	switch field {
	case schema.FieldProviderName:
		return m.ProviderName
	case schema.FieldPrincipalID:
		return m.PrincipalID
	case schema.FieldTargetIdentifier:
		return m.TargetIdentifier
	case schema.FieldUniqueKey:
		return m.UniqueKey
	}
	return ""
}

func (m *Mapping) Set(field, value string) {
	switch field {
	case schema.FieldProviderName:
		m.ProviderName = value
	case schema.FieldPrincipalID:
		m.PrincipalID = value
	case schema.FieldTargetIdentifier:
		m.TargetIdentifier = value
	case schema.FieldUniqueKey:
		m.UniqueKey = value
	}
}
