package summarize

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/upstream"
)

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// seriesByTenant sums each data point of a counter by its tenant.id label.
func seriesByTenant(rm metricdata.ResourceMetrics, name string) map[string]int64 {
	series := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					v, _ := dp.Attributes.Value("tenant.id")
					series[v.AsString()] += dp.Value
				}
			}
		}
	}
	return series
}

func TestSummarize_Telemetry(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	tel := observe.NewTelemetry(observe.NewTracer(tp.Tracer("test")), metrics, observe.NewLoggerWithWriter("debug", &logs))

	script := upstream.NewScript(upstream.Fail(upstream.ErrUpstream), upstream.Succeed("ok"))
	f := newFixture(t, script, WithTelemetry(tel))
	ctx := observe.WithRequest(context.Background(), observe.RequestMeta{RequestID: "req-1", TenantID: "tenant1"})

	secret := "confidential quarterly numbers"
	for i := 0; i < 2; i++ {
		if _, err := f.svc.Summarize(ctx, "tenant1", secret); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = f.svc.Summarize(ctx, "tenant1", "")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	checks := map[string]int64{
		observe.MetricTotal:            3,
		observe.MetricErrors:           1,
		observe.MetricCacheHits:        1,
		observe.MetricCacheMisses:      1,
		observe.MetricUpstreamAttempts: 2,
	}
	for name, want := range checks {
		if got := counterTotal(rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}

	ended := spans.Ended()
	if len(ended) != 3 {
		t.Fatalf("spans = %d, want 3", len(ended))
	}
	if ended[0].Name() != observe.SpanName {
		t.Errorf("span name = %q", ended[0].Name())
	}

	out := logs.String()
	if strings.Contains(out, secret) {
		t.Error("input text leaked into logs")
	}
	for _, want := range []string{`"request.id":"req-1"`, "upstream attempt failed", `"error.kind":"empty_input"`} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %s:\n%s", want, out)
		}
	}
}

func TestSummarize_UnknownTenantsShareOneSeries(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	tel := observe.NewTelemetry(observe.NewTracer(tp.Tracer("test")), metrics, nil)

	f := newFixture(t, upstream.NewScript(upstream.Succeed("ok")), WithTelemetry(tel))
	ctx := context.Background()

	const unknown = 100
	for i := 0; i < unknown; i++ {
		if _, err := f.svc.Summarize(ctx, fmt.Sprintf("bogus-%d", i), "x"); Kind(err) != KindTenantNotFound {
			t.Fatalf("Summarize(bogus-%d) = %v, want tenant not found", i, err)
		}
	}
	if _, err := f.svc.Summarize(ctx, "tenant1", "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Summarize(ctx, "tenant1", "x"); err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		metric string
		want   map[string]int64
	}{
		{observe.MetricTotal, map[string]int64{observe.UnresolvedTenant: unknown, "tenant1": 2}},
		{observe.MetricErrors, map[string]int64{observe.UnresolvedTenant: unknown}},
		{observe.MetricCacheMisses, map[string]int64{observe.UnresolvedTenant: unknown, "tenant1": 1}},
		{observe.MetricCacheHits, map[string]int64{"tenant1": 1}},
		{observe.MetricUpstreamAttempts, map[string]int64{"tenant1": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			got := seriesByTenant(rm, tt.metric)
			if len(got) != len(tt.want) {
				t.Fatalf("series = %v, want %v", got, tt.want)
			}
			for tenantID, n := range tt.want {
				if got[tenantID] != n {
					t.Errorf("series[%s] = %d, want %d", tenantID, got[tenantID], n)
				}
			}
		})
	}

	for _, s := range spans.Ended() {
		if s.Name() != observe.SpanName {
			t.Fatalf("span name = %q, want %q", s.Name(), observe.SpanName)
		}
	}
}
