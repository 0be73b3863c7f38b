package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"idbridge/internal/access"
	"idbridge/internal/platform/metrics"
	"idbridge/internal/platform/telemetry"
	"idbridge/internal/schema"
	"idbridge/internal/validation"
	id "idbridge/pkg/domain"
	"idbridge/pkg/requestcontext"
)

const tracerName = "idbridge/pipeline"

// AccessChecker is the subset of the access gate the pipeline needs.
type AccessChecker interface {
	Ensure(ctx context.Context, check access.Check) error
}

// LogRequest asks for a new log entry. All fields are required.
type LogRequest struct {
	ProviderName string
	PrincipalID  string
	LogID        string
	Message      string
}

// LoginHistoryRequest asks for a new login history row. ProviderType and
// Info are optional; blank values are stored as null.
type LoginHistoryRequest struct {
	ProviderName string
	PrincipalID  string
	FlowType     string
	Timestamp    time.Time
	Success      bool
	ProviderType string
	Info         string
}

// MappingTouchRequest asks the consumer to record a login on a mapping.
// The new count and timestamp are computed by the consumer.
type MappingTouchRequest struct {
	ProviderName string
	PrincipalID  string
}

// Publisher turns write requests into change events.
type Publisher struct {
	bus     Bus
	access  AccessChecker
	limits  schema.Limits
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(bus Bus, access AccessChecker, limits schema.Limits, opts ...Option) (*Publisher, error) {
	if bus == nil {
		return nil, errors.New("bus is required")
	}
	if access == nil {
		return nil, errors.New("access checker is required")
	}
	if limits == nil {
		limits = schema.Defaults()
	}
	p := &Publisher{
		bus:    bus,
		access: access,
		limits: limits,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Publisher) PublishLog(ctx context.Context, req LogRequest) (err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.PublishLog",
		attribute.String(telemetry.AttrProviderName, req.ProviderName))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validation.NonBlank(validation.KindLog,
		validation.Field(schema.FieldProviderName, req.ProviderName),
		validation.Field(schema.FieldPrincipalID, req.PrincipalID),
		validation.Field(schema.FieldLogID, req.LogID),
		validation.Field(schema.FieldMessage, req.Message),
	); err != nil {
		return err
	}
	if err := p.access.Ensure(ctx, access.LogEventCreate); err != nil {
		return err
	}

	obj := schema.ObjectMappingLog
	return p.publish(ctx, ChangeEvent{
		Kind:         KindLogCreate,
		ProviderName: p.fit(obj, schema.FieldProviderName, req.ProviderName),
		PrincipalID:  p.fit(obj, schema.FieldPrincipalID, req.PrincipalID),
		LogID:        p.fit(obj, schema.FieldLogID, req.LogID),
		Message:      p.fit(obj, schema.FieldMessage, req.Message),
	})
}

func (p *Publisher) PublishLoginHistory(ctx context.Context, req LoginHistoryRequest) (err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.PublishLoginHistory",
		attribute.String(telemetry.AttrProviderName, req.ProviderName))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validation.NonBlank(validation.KindLoginHistory,
		validation.Field(schema.FieldProviderName, req.ProviderName),
		validation.Field(schema.FieldPrincipalID, req.PrincipalID),
		validation.Field(schema.FieldFlowType, req.FlowType),
		validation.Field(schema.FieldLoggedAt, timeText(req.Timestamp)),
	); err != nil {
		return err
	}
	flow, err := id.ParseFlowType(req.FlowType)
	if err != nil {
		return err
	}
	if err := p.access.Ensure(ctx, access.LoginHistoryEventCreate); err != nil {
		return err
	}

	obj := schema.ObjectLoginHistory
	return p.publish(ctx, ChangeEvent{
		Kind:         KindLoginHistoryCreate,
		ProviderName: p.fit(obj, schema.FieldProviderName, req.ProviderName),
		PrincipalID:  p.fit(obj, schema.FieldPrincipalID, req.PrincipalID),
		FlowType:     p.fit(obj, schema.FieldFlowType, flow.String()),
		Timestamp:    req.Timestamp,
		Success:      req.Success,
		ProviderType: p.fitOptional(obj, schema.FieldProviderType, req.ProviderType),
		Info:         p.fitOptional(obj, schema.FieldInfo, req.Info),
	})
}

func (p *Publisher) PublishMappingTouch(ctx context.Context, req MappingTouchRequest) (err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.PublishMappingTouch",
		attribute.String(telemetry.AttrProviderName, req.ProviderName))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validation.NonBlank(validation.KindMapping,
		validation.Field(schema.FieldProviderName, req.ProviderName),
		validation.Field(schema.FieldPrincipalID, req.PrincipalID),
	); err != nil {
		return err
	}
	if err := p.access.Ensure(ctx, access.MappingTouchEventCreate); err != nil {
		return err
	}

	obj := schema.ObjectUserMapping
	return p.publish(ctx, ChangeEvent{
		Kind:         KindMappingTouch,
		ProviderName: p.fit(obj, schema.FieldProviderName, req.ProviderName),
		PrincipalID:  p.fit(obj, schema.FieldPrincipalID, req.PrincipalID),
	})
}

func (p *Publisher) publish(ctx context.Context, ev ChangeEvent) error {
	ev.PublishedBy = requestcontext.Principal(ctx).ID
	ev.PublishedAt = requestcontext.Now(ctx)
	if err := p.bus.Publish(ctx, ev); err != nil {
		p.logger.ErrorContext(ctx, "failed to hand off change event",
			"kind", ev.Kind,
			"error", err,
		)
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}
	p.metrics.IncPublished(ev.Kind.String())
	return nil
}

func (p *Publisher) fit(object, field, value string) string {
	return schema.Truncate(value, p.limits.MaxLength(object, field))
}

func (p *Publisher) fitOptional(object, field, value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	fitted := p.fit(object, field, value)
	return &fitted
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
