package pipeline

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the mutation a ChangeEvent asks the consumer to apply.
type Kind string

const (
	KindLogCreate          Kind = "log_create"
	KindLoginHistoryCreate Kind = "login_history_create"
	KindMappingTouch       Kind = "mapping_touch"
)

// Kinds lists every event kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindLogCreate, KindLoginHistoryCreate, KindMappingTouch}
}

func (k Kind) IsValid() bool {
	switch k {
	case KindLogCreate, KindLoginHistoryCreate, KindMappingTouch:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ChangeEvent describes a desired write. Field values are already truncated
// to the destination column sizes. Events have no identity and are never
// persisted themselves.
type ChangeEvent struct {
	Kind         Kind      `json:"kind"`
	ProviderName string    `json:"provider_name"`
	PrincipalID  string    `json:"principal_id"`
	LogID        string    `json:"log_id,omitempty"`
	Message      string    `json:"message,omitempty"`
	FlowType     string    `json:"flow_type,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
	Success      bool      `json:"success,omitempty"`
	ProviderType *string   `json:"provider_type,omitempty"`
	Info         *string   `json:"info,omitempty"`
	PublishedBy  string    `json:"published_by,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
}

// Encode renders the wire form used by broker transports.
func Encode(ev ChangeEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode change event: %w", err)
	}
	return b, nil
}

// Decode parses the wire form and rejects unknown kinds.
func Decode(b []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	if !ev.Kind.IsValid() {
		return ChangeEvent{}, fmt.Errorf("decode change event: unknown kind %q", ev.Kind)
	}
	return ev, nil
}
