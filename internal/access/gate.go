// Package access is the access gate: it verifies the acting principal holds
// the object- and field-level capabilities an operation needs before any
// mutation or change-event publication is attempted.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"idbridge/internal/platform/metrics"
	id "idbridge/pkg/domain"
	dErrors "idbridge/pkg/domain-errors"
	"idbridge/pkg/requestcontext"
)

// PermissionRegistry answers capability questions for a principal.
type PermissionRegistry interface {
	ObjectAllowed(ctx context.Context, principal id.Principal, object string, op Operation) (bool, error)
	FieldAllowed(ctx context.Context, principal id.Principal, object, field string, op Operation) (bool, error)
}

// Gate enforces Checks against a PermissionRegistry.
type Gate struct {
	registry PermissionRegistry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(registry PermissionRegistry, opts ...Option) (*Gate, error) {
	if registry == nil {
		return nil, errors.New("permission registry is required")
	}
	g := &Gate{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Ensure fails with CodeForbidden when the principal in ctx lacks the
// object capability or any listed field capability. The object is checked
// first, then fields in order; the first missing capability wins.
func (g *Gate) Ensure(ctx context.Context, check Check) error {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return g.deny(ctx, check, fmt.Sprintf("%s requires an authenticated principal", check.Name))
	}

	ok, err := g.registry.ObjectAllowed(ctx, principal, check.Object, check.Operation)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "permission lookup failed")
	}
	if !ok {
		return g.deny(ctx, check, fmt.Sprintf("%s: insufficient access to %s %s", check.Name, check.Operation, check.Object))
	}

	for _, field := range check.Fields {
		ok, err := g.registry.FieldAllowed(ctx, principal, check.Object, field, check.Operation)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "permission lookup failed")
		}
		if !ok {
			return g.deny(ctx, check, fmt.Sprintf("%s: insufficient access to %s field %s.%s", check.Name, check.Operation, check.Object, field))
		}
	}
	return nil
}

func (g *Gate) deny(ctx context.Context, check Check, message string) error {
	g.metrics.IncAccessDenied(check.Name)
	g.logger.WarnContext(ctx, "access denied",
		"check", check.Name,
		"principal_id", requestcontext.Principal(ctx).ID,
		"reason", message,
	)
	return dErrors.New(dErrors.CodeForbidden, message)
}
