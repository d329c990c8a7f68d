package observe

import (
	"context"
	"time"
)

// CallFunc is the unit of work Telemetry wraps. It may set call.Resolved once
// the tenant is known.
type CallFunc func(ctx context.Context, call *Call) error

// Telemetry bundles tracing, metrics, and logging for summarize calls.
//
// Contract:
// - Concurrency: safe for concurrent use; Wrap returns a thread-safe function.
// - Errors: errors from the wrapped function are recorded and returned
//   unchanged.
type Telemetry struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	classify func(error) string
}

// NewTelemetry creates Telemetry from its parts. Nil parts become no-ops.
func NewTelemetry(tracer Tracer, metrics Metrics, logger Logger) *Telemetry {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Telemetry{
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		classify: func(error) string { return "error" },
	}
}

// TelemetryFromObserver creates Telemetry from an Observer.
func TelemetryFromObserver(obs Observer) (*Telemetry, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewTelemetry(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// NopTelemetry returns Telemetry that records nothing.
func NopTelemetry() *Telemetry {
	return NewTelemetry(nil, nil, nil)
}

// WithClassifier returns a copy of t that labels failures with fn(err).
func (t *Telemetry) WithClassifier(fn func(error) string) *Telemetry {
	cp := *t
	if fn != nil {
		cp.classify = fn
	}
	return &cp
}

// Logger returns the logger Telemetry writes to.
func (t *Telemetry) Logger() Logger {
	return t.logger
}

// Wrap runs fn inside a span and records its outcome.
func (t *Telemetry) Wrap(fn CallFunc) func(ctx context.Context, call Call) error {
	return func(ctx context.Context, call Call) error {
		ctx, span := t.tracer.StartSpan(ctx, call)
		start := time.Now()

		err := fn(ctx, &call)

		duration := time.Since(start)
		t.tracer.EndSpan(span, err)

		kind := ""
		if err != nil {
			kind = t.classify(err)
		}
		t.metrics.RecordCall(ctx, call, duration, kind)

		fields := []Field{
			F("tenant", call.TenantID),
			F("duration_ms", float64(duration.Milliseconds())),
		}
		if err != nil {
			fields = append(fields, F("error.kind", kind), Err(err))
			t.logger.Error(ctx, "summarize failed", fields...)
		} else {
			t.logger.Info(ctx, "summarize completed", fields...)
		}

		return err
	}
}

// CacheLookup records a cache hit or miss for call.
func (t *Telemetry) CacheLookup(ctx context.Context, call Call, hit bool) {
	t.metrics.RecordCacheLookup(ctx, call, hit)
}

// Attempts records the upstream attempts a call used.
func (t *Telemetry) Attempts(ctx context.Context, call Call, attempts int) {
	t.metrics.RecordAttempts(ctx, call, attempts)
}
