package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"idbridge/internal/access"
	"idbridge/internal/auditlog"
	"idbridge/internal/mapping"
	"idbridge/internal/platform/metrics"
	"idbridge/internal/platform/telemetry"
	id "idbridge/pkg/domain"
	dErrors "idbridge/pkg/domain-errors"
	txcontext "idbridge/pkg/platform/tx"
	"idbridge/pkg/requestcontext"
)

// WriterPrincipal is the privileged identity delivered batches run as.
var WriterPrincipal = id.Principal{ID: "idbridge-event-writer", Roles: []string{"event-writer"}}

// Consumer applies delivered batches. Every handler runs all access checks
// before its first write, so a denial aborts the whole batch; persistence
// runs in one transaction so a batch commits all-or-nothing.
type Consumer struct {
	mappings mapping.Store
	logs     auditlog.Store
	access   AccessChecker
	tx       txcontext.Runner
	writer   id.Principal
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type ConsumerOption func(*Consumer)

func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

func WithConsumerMetrics(m *metrics.Metrics) ConsumerOption {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// WithTxRunner sets the unit-of-work boundary. Defaults to NoopRunner.
func WithTxRunner(r txcontext.Runner) ConsumerOption {
	return func(c *Consumer) {
		c.tx = r
	}
}

// WithWriter overrides the principal batches are applied as.
func WithWriter(p id.Principal) ConsumerOption {
	return func(c *Consumer) {
		c.writer = p
	}
}

func NewConsumer(mappings mapping.Store, logs auditlog.Store, access AccessChecker, opts ...ConsumerOption) (*Consumer, error) {
	if mappings == nil {
		return nil, errors.New("mapping store is required")
	}
	if logs == nil {
		return nil, errors.New("audit log store is required")
	}
	if access == nil {
		return nil, errors.New("access checker is required")
	}
	c := &Consumer{
		mappings: mappings,
		logs:     logs,
		access:   access,
		tx:       txcontext.NoopRunner{},
		writer:   WriterPrincipal,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Router returns a router with a handler registered for every kind.
func (c *Consumer) Router() *Router {
	r := NewRouter(c.logger)
	r.Register(KindLogCreate, c.handler(c.applyLogs))
	r.Register(KindLoginHistoryCreate, c.handler(c.applyLoginHistory))
	r.Register(KindMappingTouch, c.handler(c.applyMappingTouches))
	return r
}

func (c *Consumer) handler(apply func(ctx context.Context, batch []ChangeEvent) error) BatchHandler {
	return BatchHandlerFunc(func(ctx context.Context, kind Kind, batch []ChangeEvent) (err error) {
		ctx = requestcontext.WithPrincipal(ctx, c.writer)
		ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.HandleBatch",
			attribute.String(telemetry.AttrEventKind, kind.String()),
			attribute.Int(telemetry.AttrBatchSize, len(batch)),
		)
		defer func() {
			telemetry.RecordError(span, err)
			span.End()
		}()

		if err := apply(ctx, batch); err != nil {
			reason := "store"
			if dErrors.HasCode(err, dErrors.CodeForbidden) {
				reason = "access_denied"
			}
			c.metrics.IncBatchFailure(kind.String(), reason)
			c.logger.ErrorContext(ctx, "change event batch aborted",
				"kind", kind,
				"size", len(batch),
				"reason", reason,
				"error", err,
			)
			return err
		}
		c.metrics.ObserveBatch(kind.String(), len(batch))
		return nil
	})
}

func (c *Consumer) applyLogs(ctx context.Context, batch []ChangeEvent) error {
	if err := c.access.Ensure(ctx, access.LogEntryCreate); err != nil {
		return err
	}
	if err := c.access.Ensure(ctx, access.MappingLogReferenceUpdate); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	entries := make([]*auditlog.LogEntry, 0, len(batch))
	for _, ev := range batch {
		entries = append(entries, &auditlog.LogEntry{
			ID:           uuid.New(),
			ProviderName: ev.ProviderName,
			PrincipalID:  ev.PrincipalID,
			LogID:        ev.LogID,
			Message:      ev.Message,
			CreatedAt:    now,
		})
	}

	return c.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := c.logs.InsertLogs(ctx, entries); err != nil {
			return err
		}
		for _, e := range entries {
			// a pair without a mapping has nothing to touch
			if _, err := c.mappings.TouchLogReference(ctx, e.ProviderName, e.PrincipalID, e.ID, now); err != nil {
				return fmt.Errorf("touch log reference: %w", err)
			}
		}
		return nil
	})
}

func (c *Consumer) applyLoginHistory(ctx context.Context, batch []ChangeEvent) error {
	if err := c.access.Ensure(ctx, access.LoginHistoryEntryCreate); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	entries := make([]*auditlog.LoginHistoryEntry, 0, len(batch))
	for _, ev := range batch {
		entries = append(entries, &auditlog.LoginHistoryEntry{
			ID:           uuid.New(),
			ProviderName: ev.ProviderName,
			PrincipalID:  ev.PrincipalID,
			FlowType:     id.FlowType(ev.FlowType),
			Timestamp:    ev.Timestamp,
			Success:      ev.Success,
			ProviderType: ev.ProviderType,
			Info:         ev.Info,
			CreatedAt:    now,
		})
	}

	return c.tx.RunInTx(ctx, func(ctx context.Context) error {
		return c.logs.InsertLoginHistory(ctx, entries)
	})
}

func (c *Consumer) applyMappingTouches(ctx context.Context, batch []ChangeEvent) error {
	if err := c.access.Ensure(ctx, access.MappingUpdate); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	return c.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, ev := range batch {
			if _, err := c.mappings.RecordLogin(ctx, ev.ProviderName, ev.PrincipalID, now); err != nil {
				return fmt.Errorf("record login: %w", err)
			}
		}
		return nil
	})
}
