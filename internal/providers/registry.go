// Package providers tracks the external-auth providers configured for the
// host application. Names are compared case-insensitively.
package providers

import (
	"context"
	"fmt"
	"strings"

	platformstrings "idbridge/pkg/platform/strings"
)

// Registry resolves provider names. Existing is keyed by lower-cased name
// and only contains names that are registered.
type Registry interface {
	Existing(ctx context.Context, names []string) (map[string]bool, error)
	Register(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
}

// Normalize is the registry key for a provider name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Seed registers every non-blank name once.
func Seed(ctx context.Context, registry Registry, names []string) error {
	for _, name := range platformstrings.DedupeAndTrimLower(names) {
		if err := registry.Register(ctx, name); err != nil {
			return fmt.Errorf("seed provider %q: %w", name, err)
		}
	}
	return nil
}
