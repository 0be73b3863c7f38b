//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

package mapping

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists mappings. Lookups match the exact (provider, principal)
// pair; the unique key only guards Save. FindByKey returns
// sentinel.ErrNotFound for an unknown pair. TouchLogReference and RecordLogin report whether a mapping
// was updated; a missing mapping is not an error.
type Store interface {
	FindByKey(ctx context.Context, provider, principal string) (*Mapping, error)
	Save(ctx context.Context, m *Mapping) error
	TouchLogReference(ctx context.Context, provider, principal string, logRef uuid.UUID, at time.Time) (bool, error)
	RecordLogin(ctx context.Context, provider, principal string, at time.Time) (bool, error)
}
