package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instrument names.
const (
	MetricTotal            = "summarize.total"
	MetricErrors           = "summarize.errors"
	MetricDuration         = "summarize.duration_ms"
	MetricCacheHits        = "summarize.cache.hits"
	MetricCacheMisses      = "summarize.cache.misses"
	MetricUpstreamAttempts = "summarize.upstream.attempts"
)

// Metrics records summarize instruments.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one finished call. errorKind is empty on success.
	RecordCall(ctx context.Context, call Call, duration time.Duration, errorKind string)

	// RecordCacheLookup records a read-first cache hit or miss.
	RecordCacheLookup(ctx context.Context, call Call, hit bool)

	// RecordAttempts records how many upstream attempts a call used.
	RecordAttempts(ctx context.Context, call Call, attempts int)
}

type metricsImpl struct {
	total        metric.Int64Counter
	errors       metric.Int64Counter
	duration     metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	upstreamUsed metric.Int64Counter
}

// NewMetrics creates the summarize instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.total, err = meter.Int64Counter(MetricTotal,
		metric.WithDescription("Total number of summarize calls"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.errors, err = meter.Int64Counter(MetricErrors,
		metric.WithDescription("Total number of failed summarize calls"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.duration, err = meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Summarize call duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.cacheHits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Summaries served from the tenant cache"),
		metric.WithUnit("{hit}"),
	); err != nil {
		return nil, err
	}

	if m.cacheMisses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Summaries not found in the tenant cache"),
		metric.WithUnit("{miss}"),
	); err != nil {
		return nil, err
	}

	if m.upstreamUsed, err = meter.Int64Counter(MetricUpstreamAttempts,
		metric.WithDescription("Upstream model attempts"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func tenantAttr(call Call) attribute.KeyValue {
	return attribute.String("tenant.id", call.MetricTenant())
}

func (m *metricsImpl) RecordCall(ctx context.Context, call Call, duration time.Duration, errorKind string) {
	opt := metric.WithAttributes(tenantAttr(call))

	m.total.Add(ctx, 1, opt)
	if errorKind != "" {
		m.errors.Add(ctx, 1, metric.WithAttributes(tenantAttr(call), attribute.String("error.kind", errorKind)))
	}
	m.duration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, call Call, hit bool) {
	opt := metric.WithAttributes(tenantAttr(call))
	if hit {
		m.cacheHits.Add(ctx, 1, opt)
	} else {
		m.cacheMisses.Add(ctx, 1, opt)
	}
}

func (m *metricsImpl) RecordAttempts(ctx context.Context, call Call, attempts int) {
	if attempts <= 0 {
		return
	}
	m.upstreamUsed.Add(ctx, int64(attempts), metric.WithAttributes(tenantAttr(call)))
}

// NopMetrics returns Metrics backed by a no-op meter.
func NopMetrics() Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("noop"))
	if err != nil {
		// The no-op meter never fails.
		panic(err)
	}
	return m
}
