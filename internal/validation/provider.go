package validation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	dErrors "idbridge/pkg/domain-errors"
	platformstrings "idbridge/pkg/platform/strings"
)

// SuppressProviderCheckUnderTest skips ProviderExists inside test binaries.
// Tests that exercise the check set it to false.
var SuppressProviderCheckUnderTest = true

// ProviderLookup resolves lower-cased provider names in one batch.
type ProviderLookup interface {
	Existing(ctx context.Context, names []string) (map[string]bool, error)
}

// ProviderRecord is a record that references a provider by name.
type ProviderRecord interface {
	ProviderReference() string
}

// ProviderExists flags every record whose provider name is not registered.
// The returned slice is aligned with records; a nil entry means the record
// passed. The only non-nil error return is a failed registry lookup.
func ProviderExists[R ProviderRecord](ctx context.Context, registry ProviderLookup, records []R) ([]error, error) {
	errs := make([]error, len(records))
	if len(records) == 0 || (SuppressProviderCheckUnderTest && testing.Testing()) {
		return errs, nil
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.ProviderReference())
	}
	distinct := platformstrings.DedupeAndTrimLower(names)

	known := map[string]bool{}
	if len(distinct) > 0 {
		var err error
		known, err = registry.Existing(ctx, distinct)
		if err != nil {
			return nil, fmt.Errorf("resolve providers: %w", err)
		}
	}

	for i, r := range records {
		name := r.ProviderReference()
		if !known[strings.ToLower(strings.TrimSpace(name))] {
			errs[i] = dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown auth provider %q", name))
		}
	}
	return errs, nil
}
