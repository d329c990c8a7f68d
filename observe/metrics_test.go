package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	call := Call{TenantID: "tenant1"}

	m.RecordCall(ctx, call, 120*time.Millisecond, "")
	m.RecordCall(ctx, call, 10*time.Millisecond, "enrichment_failure")

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricTotal); got != 2 {
		t.Errorf("%s = %d, want 2", MetricTotal, got)
	}
	if got := sumOf(t, rm, MetricErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricErrors, got)
	}

	errs := findMetric(rm, MetricErrors).Data.(metricdata.Sum[int64])
	kind, ok := errs.DataPoints[0].Attributes.Value(attribute.Key("error.kind"))
	if !ok || kind.AsString() != "enrichment_failure" {
		t.Errorf("error.kind = %v, want enrichment_failure", kind)
	}

	hist, ok := findMetric(rm, MetricDuration).Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("%s = %+v, want one data point with count 2", MetricDuration, hist)
	}
}

func TestMetrics_CacheAndAttempts(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	call := Call{TenantID: "tenant2"}

	m.RecordCacheLookup(ctx, call, true)
	m.RecordCacheLookup(ctx, call, false)
	m.RecordCacheLookup(ctx, call, false)
	m.RecordAttempts(ctx, call, 3)
	m.RecordAttempts(ctx, call, 0)

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricCacheHits); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if got := sumOf(t, rm, MetricCacheMisses); got != 2 {
		t.Errorf("misses = %d, want 2", got)
	}
	if got := sumOf(t, rm, MetricUpstreamAttempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordCall(context.Background(), Call{TenantID: "t"}, time.Millisecond, "")
		}()
	}
	wg.Wait()

	if got := sumOf(t, collect(t, reader), MetricTotal); got != goroutines {
		t.Errorf("total = %d, want %d", got, goroutines)
	}
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.RecordCall(context.Background(), Call{}, time.Second, "x")
	m.RecordCacheLookup(context.Background(), Call{}, true)
	m.RecordAttempts(context.Background(), Call{}, 1)
}
