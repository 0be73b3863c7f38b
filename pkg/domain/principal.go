package domain

import "strings"

// Principal is the authenticated user on whose behalf an operation runs.
// ID is the host application's user identifier; Roles drive capability checks.
type Principal struct {
	ID    string
	Roles []string
}

// IsZero reports whether no principal is set.
func (p Principal) IsZero() bool {
	return strings.TrimSpace(p.ID) == ""
}

// HasRole reports whether the principal carries role (case-sensitive).
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
