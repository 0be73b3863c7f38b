// Package facade exposes the public operations behind a single
// invoke(operation, args) entry point so callers need no compile-time
// dependency on the service.
package facade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"idbridge/internal/identitylink"
	"idbridge/internal/mapping"
	"idbridge/internal/platform/metrics"
	"idbridge/internal/platform/telemetry"
	"idbridge/internal/userinfo"
	dErrors "idbridge/pkg/domain-errors"
)

const tracerName = "idbridge/facade"

// Operation names accepted by Invoke.
const (
	OpInsertLog                       = "insertLog"
	OpCheckUserMappingExists          = "checkUserMappingExists"
	OpUpdateMappingLoginDetails       = "updateMappingLoginDetails"
	OpGetSubjectFromUserMapping       = "getSubjectFromUserMapping"
	OpGetAuthUserDataFromCookieHeader = "getAuthUserDataFromCookieHeader"
	OpInsertLoginHistoryRecord        = "insertLoginHistoryRecord"
)

// Argument names.
const (
	ArgProviderName = "provider_name"
	ArgPrincipalID  = "principal_id"
	ArgLogID        = "log_id"
	ArgMessage      = "message"
	ArgFlowType     = "flow_type"
	ArgTimestamp    = "timestamp"
	ArgSuccess      = "success"
	ArgProviderType = "provider_type"
	ArgLoginInfo    = "login_info"
	ArgCookieHeader = "cookie_header"
)

// Operations is the service surface the dispatcher drives.
type Operations interface {
	InsertLog(ctx context.Context, providerName, principalID, logID, message string) error
	InsertLoginHistoryRecord(ctx context.Context, rec identitylink.LoginHistoryRecord) error
	CheckUserMappingExists(ctx context.Context, providerName, principalID string) (bool, error)
	UpdateMappingLoginDetails(ctx context.Context, providerName, principalID string) error
	GetSubjectFromUserMapping(ctx context.Context, providerName, principalID string) (string, bool, error)
	GetAuthUserDataFromCookieHeader(ctx context.Context, cookieHeader string) (*userinfo.UserProfile, error)
	NewRequestCache() *mapping.Cache
}

// UnsupportedOperationError is returned for a name outside the operation set.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q", e.Operation)
}

type handler func(ctx context.Context, args Args) (any, error)

// Dispatcher routes invocations to typed handlers.
type Dispatcher struct {
	ops      Operations
	handlers map[string]handler
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func New(ops Operations, opts ...Option) (*Dispatcher, error) {
	if ops == nil {
		return nil, errors.New("operations are required")
	}
	d := &Dispatcher{
		ops:    ops,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handler{
		OpInsertLog:                       d.insertLog,
		OpCheckUserMappingExists:          d.checkUserMappingExists,
		OpUpdateMappingLoginDetails:       d.updateMappingLoginDetails,
		OpGetSubjectFromUserMapping:       d.getSubjectFromUserMapping,
		OpGetAuthUserDataFromCookieHeader: d.getAuthUserDataFromCookieHeader,
		OpInsertLoginHistoryRecord:        d.insertLoginHistoryRecord,
	}
	return d, nil
}

// Operations lists the supported operation names in sorted order.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named operation. Void operations return nil. Each call
// gets its own mapping cache unless ctx already carries one.
func (d *Dispatcher) Invoke(ctx context.Context, operation string, args map[string]any) (result any, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "facade.Invoke",
		attribute.String(telemetry.AttrOperation, operation),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	h, ok := d.handlers[operation]
	if !ok {
		d.metrics.IncInvocation("unsupported", string(dErrors.CodeUnsupportedOperation))
		d.logger.WarnContext(ctx, "unsupported operation invoked", "operation", operation)
		return nil, dErrors.Wrap(&UnsupportedOperationError{Operation: operation},
			dErrors.CodeUnsupportedOperation, fmt.Sprintf("unsupported operation %q", operation))
	}

	if _, scoped := mapping.CacheFrom(ctx); !scoped {
		ctx = mapping.WithCache(ctx, d.ops.NewRequestCache())
	}

	result, err = h(ctx, Args(args))
	if err != nil {
		d.metrics.IncInvocation(operation, string(dErrors.CodeOf(err)))
		return nil, err
	}
	d.metrics.IncInvocation(operation, "ok")
	return result, nil
}

func (d *Dispatcher) insertLog(ctx context.Context, args Args) (any, error) {
	var provider, principal, logID, message string
	if err := readStrings(args, map[string]*string{
		ArgProviderName: &provider,
		ArgPrincipalID:  &principal,
		ArgLogID:        &logID,
		ArgMessage:      &message,
	}); err != nil {
		return nil, err
	}
	return nil, d.ops.InsertLog(ctx, provider, principal, logID, message)
}

func (d *Dispatcher) insertLoginHistoryRecord(ctx context.Context, args Args) (any, error) {
	var rec identitylink.LoginHistoryRecord
	if err := readStrings(args, map[string]*string{
		ArgProviderName: &rec.ProviderName,
		ArgPrincipalID:  &rec.PrincipalID,
		ArgFlowType:     &rec.FlowType,
		ArgProviderType: &rec.ProviderType,
		ArgLoginInfo:    &rec.LoginInfo,
	}); err != nil {
		return nil, err
	}
	var err error
	if rec.Timestamp, err = args.Time(ArgTimestamp); err != nil {
		return nil, err
	}
	if rec.Success, err = args.Bool(ArgSuccess); err != nil {
		return nil, err
	}
	return nil, d.ops.InsertLoginHistoryRecord(ctx, rec)
}

func (d *Dispatcher) checkUserMappingExists(ctx context.Context, args Args) (any, error) {
	provider, principal, err := pair(args)
	if err != nil {
		return nil, err
	}
	return d.ops.CheckUserMappingExists(ctx, provider, principal)
}

func (d *Dispatcher) updateMappingLoginDetails(ctx context.Context, args Args) (any, error) {
	provider, principal, err := pair(args)
	if err != nil {
		return nil, err
	}
	return nil, d.ops.UpdateMappingLoginDetails(ctx, provider, principal)
}

// getSubjectFromUserMapping returns nil, not "", for an unmapped pair.
func (d *Dispatcher) getSubjectFromUserMapping(ctx context.Context, args Args) (any, error) {
	provider, principal, err := pair(args)
	if err != nil {
		return nil, err
	}
	subject, ok, err := d.ops.GetSubjectFromUserMapping(ctx, provider, principal)
	if err != nil || !ok {
		return nil, err
	}
	return subject, nil
}

func (d *Dispatcher) getAuthUserDataFromCookieHeader(ctx context.Context, args Args) (any, error) {
	header, err := args.String(ArgCookieHeader)
	if err != nil {
		return nil, err
	}
	return d.ops.GetAuthUserDataFromCookieHeader(ctx, header)
}

func pair(args Args) (string, string, error) {
	var provider, principal string
	err := readStrings(args, map[string]*string{
		ArgProviderName: &provider,
		ArgPrincipalID:  &principal,
	})
	return provider, principal, err
}

func readStrings(args Args, dst map[string]*string) error {
	for name, ptr := range dst {
		v, err := args.String(name)
		if err != nil {
			return err
		}
		*ptr = v
	}
	return nil
}
