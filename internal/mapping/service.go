package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idbridge/internal/access"
	"idbridge/internal/schema"
	"idbridge/internal/validation"
	"idbridge/pkg/requestcontext"
)

// Service is the operator path for creating and editing mappings. It runs
// the save triggers: composite key derivation and provider validation.
type Service struct {
	store     Store
	providers validation.ProviderLookup
	access    AccessChecker
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, providers validation.ProviderLookup, access AccessChecker, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		access:    access,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveBatch saves every record that passes validation. Blank fields are
// reported before the provider lookup, which only sees complete records.
// The returned slice is aligned with mappings; a flagged record is skipped
// and the rest of the batch proceeds. The error return is reserved for
// failures that affect the whole batch (access denied, registry
// unavailable).
func (s *Service) SaveBatch(ctx context.Context, mappings []*Mapping) ([]error, error) {
	if err := s.access.Ensure(ctx, access.MappingSave); err != nil {
		return nil, err
	}

	validation.DeriveCompositeKey(mappings, schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldUniqueKey)

	errs := make([]error, len(mappings))
	complete := make([]*Mapping, 0, len(mappings))
	positions := make([]int, 0, len(mappings))
	for i, m := range mappings {
		if err := validation.NonBlank(validation.KindMapping,
			validation.Field(schema.FieldProviderName, m.ProviderName),
			validation.Field(schema.FieldPrincipalID, m.PrincipalID),
			validation.Field(schema.FieldTargetIdentifier, m.TargetIdentifier),
		); err != nil {
			errs[i] = err
			continue
		}
		complete = append(complete, m)
		positions = append(positions, i)
	}

	unknown, err := validation.ProviderExists(ctx, s.providers, complete)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	for j, m := range complete {
		i := positions[j]
		if unknown[j] != nil {
			errs[i] = unknown[j]
			continue
		}
		prepare(m, now)
		if err := s.store.Save(ctx, m); err != nil {
			errs[i] = fmt.Errorf("save mapping: %w", err)
		}
	}

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.InfoContext(ctx, "mapping batch saved with flagged records",
			"size", len(mappings),
			"flagged", failed,
		)
	}
	return errs, nil
}

func prepare(m *Mapping, now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
