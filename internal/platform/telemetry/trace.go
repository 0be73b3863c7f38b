// Package telemetry wraps the otel tracer. Without a configured provider
// the global no-op tracer is used, so spans cost nothing in tests.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a span on the named tracer.
//
//	ctx, span := telemetry.StartSpan(ctx, "idbridge/pipeline", "pipeline.PublishLog",
//	    attribute.String(telemetry.AttrEventKind, "log_create"),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

const (
	AttrEventKind    = "event.kind"
	AttrBatchSize    = "event.batch_size"
	AttrProviderName = "mapping.provider_name"
	AttrOperation    = "facade.operation"
	AttrCheck        = "access.check"
)
