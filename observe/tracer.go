package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanName names every summarize span. The tenant travels as an attribute.
const SpanName = "summarize"

// UnresolvedTenant labels metrics for calls whose tenant was never found.
const UnresolvedTenant = "unknown"

// Call identifies one summarize call for telemetry.
type Call struct {
	TenantID string

	// Resolved reports that TenantID named a known tenant. Metrics only carry
	// resolved tenant ids so that arbitrary caller input cannot create series.
	Resolved bool
}

// MetricTenant returns the tenant label for metrics.
func (c Call) MetricTenant() string {
	if !c.Resolved {
		return UnresolvedTenant
	}
	return c.TenantID
}

// Tracer wraps OpenTelemetry tracing with per-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, call Call) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps t.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, call Call) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("tenant.id", call.TenantID),
		attribute.Bool("summarize.error", false),
	}
	if meta, ok := RequestFromContext(ctx); ok && meta.RequestID != "" {
		attrs = append(attrs, attribute.String("request.id", meta.RequestID))
	}

	return t.tracer.Start(ctx, SpanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("summarize.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
