package domain

import (
	"strings"

	dErrors "idbridge/pkg/domain-errors"
)

// FlowType identifies which leg of the external authentication flow produced a
// login-history record.
// Invariant: the value must be one of the supported flow types.
//
// Usage: construct via ParseFlowType at trust boundaries; direct casting
// bypasses validation.
type FlowType string

const (
	FlowTypeInitial FlowType = "Initial"
	FlowTypeRefresh FlowType = "Refresh"
)

var validFlowTypes = map[string]FlowType{
	"initial": FlowTypeInitial,
	"refresh": FlowTypeRefresh,
}

// ParseFlowType accepts the flow type case-insensitively and returns the
// canonical spelling.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseFlowType(s string) (FlowType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "flow type cannot be empty")
	}
	ft, ok := validFlowTypes[strings.ToLower(s)]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid flow type")
	}
	return ft, nil
}

// IsValid checks if the flow type is one of the supported enum values.
func (f FlowType) IsValid() bool {
	return f == FlowTypeInitial || f == FlowTypeRefresh
}

func (f FlowType) String() string {
	return string(f)
}
