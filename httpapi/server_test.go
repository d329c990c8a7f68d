package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/enrichment/auth"
	"github.com/jonwraymond/enrichment/health"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/prompt"
	"github.com/jonwraymond/enrichment/summarize"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/upstream"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newService(t *testing.T, invoker upstream.Invoker) *summarize.Service {
	t.Helper()
	svc, err := summarize.New(tenant.NewDefaultStore(), prompt.NewTemplateBuilder(), invoker,
		summarize.WithSleep(noSleep),
		summarize.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("summarize.New: %v", err)
	}
	return svc
}

func post(t *testing.T, h http.Handler, headers map[string]string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, SummarizePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestSummarize_Success(t *testing.T) {
	srv := New(newService(t, upstream.NewScript(upstream.Succeed("short summary"))))

	rec := post(t, srv, map[string]string{"X-TENANT-ID": "tenant1"}, `{"input_text":"Some text to summarize."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response should carry a request id")
	}

	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"inputText": "Some text to summarize.",
		"summary":   "short summary",
		"tenantId":  "tenant1",
		"timestamp": "2024-05-01T12:00:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name       string
		invoker    upstream.Invoker
		headers    map[string]string
		body       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "missing tenant header",
			body:       `{"input_text":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeBadRequest,
			wantMsg:    "Required header X-TENANT-ID is missing",
		},
		{
			name:       "blank tenant header",
			headers:    map[string]string{"X-TENANT-ID": "  "},
			body:       `{"input_text":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeBadRequest,
			wantMsg:    "Required header X-TENANT-ID is missing",
		},
		{
			name:       "malformed body",
			headers:    map[string]string{"X-TENANT-ID": "tenant1"},
			body:       `{"input_text":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeBadRequest,
		},
		{
			name:       "empty input",
			headers:    map[string]string{"X-TENANT-ID": "tenant1"},
			body:       `{"input_text":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeEmptyInput,
			wantMsg:    summarize.ErrEmptyInput.Error(),
		},
		{
			name:       "unknown tenant",
			headers:    map[string]string{"X-TENANT-ID": "unknown"},
			body:       `{"input_text":"hello"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   CodeTenantNotFound,
			wantMsg:    "unknown",
		},
		{
			name:       "token limit",
			headers:    map[string]string{"X-TENANT-ID": "tenant2"},
			body:       `{"input_text":"` + strings.Repeat("a", 201) + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeTokenLimitExceeded,
			wantMsg:    "(201)",
		},
		{
			name:       "upstream exhausted",
			invoker:    upstream.NewScript(upstream.Fail(upstream.ErrUpstream)),
			headers:    map[string]string{"X-TENANT-ID": "tenant2"},
			body:       `{"input_text":"hello"}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeEnrichmentError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := tt.invoker
			if invoker == nil {
				invoker = upstream.NewScript(upstream.Succeed("ok"))
			}
			srv := New(newService(t, invoker))

			rec := post(t, srv, tt.headers, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("code = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if !strings.Contains(resp.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestSummarize_MethodNotAllowed(t *testing.T) {
	srv := New(newService(t, upstream.NewScript()))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, SummarizePath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET code = %d, want 405", rec.Code)
	}
}

func TestSummarize_BodyLimit(t *testing.T) {
	srv := New(newService(t, upstream.NewScript()), WithMaxBodyBytes(16))

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"oversized", `{"input_text":"` + strings.Repeat("a", 64) + `"}`, http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{"malformed within limit", `{"input_text":`, http.StatusBadRequest, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, srv, map[string]string{"X-TENANT-ID": "tenant1"}, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := decodeError(t, rec).Code; got != tt.wantErr {
				t.Errorf("error code = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestSummarize_JWTTenant(t *testing.T) {
	secret := []byte("test-secret-key-at-least-32-bytes")
	authn := auth.NewCompositeAuthenticator(
		auth.NewJWTAuthenticator(auth.JWTConfig{}, auth.NewStaticKeyProvider(secret)),
		auth.NewHeaderAuthenticator(""),
	)
	srv := New(newService(t, upstream.NewScript(upstream.Succeed("ok"))), WithAuthenticator(authn))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "svc", "tenant_id": "tenant3"}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}

	rec := post(t, srv, map[string]string{"Authorization": "Bearer " + token}, `{"input_text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res summarize.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.TenantID != "tenant3" {
		t.Errorf("TenantID = %q, want tenant3", res.TenantID)
	}

	rec = post(t, srv, map[string]string{"Authorization": "Bearer garbage"}, `{"input_text":"hello"}`)
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec).Code != CodeUnauthorized {
		t.Errorf("bad token code = %d", rec.Code)
	}
}

type summarizerFunc func(ctx context.Context, tenantID, inputText string) (*summarize.Result, error)

func (f summarizerFunc) Summarize(ctx context.Context, tenantID, inputText string) (*summarize.Result, error) {
	return f(ctx, tenantID, inputText)
}

func TestSummarize_PropagatesRequestMeta(t *testing.T) {
	var got observe.RequestMeta
	var gotIdentity *auth.Identity
	srv := New(summarizerFunc(func(ctx context.Context, tenantID, _ string) (*summarize.Result, error) {
		got, _ = observe.RequestFromContext(ctx)
		gotIdentity = auth.IdentityFromContext(ctx)
		return &summarize.Result{TenantID: tenantID}, nil
	}))

	post(t, srv, map[string]string{"X-TENANT-ID": "tenant1", RequestIDHeader: "req-42"}, `{"input_text":"x"}`)

	if got.RequestID != "req-42" || got.TenantID != "tenant1" {
		t.Errorf("RequestMeta = %+v, want req-42/tenant1", got)
	}
	if gotIdentity == nil || gotIdentity.TenantID != "tenant1" {
		t.Errorf("identity = %+v", gotIdentity)
	}
}

func TestSummarize_UnclassifiedError(t *testing.T) {
	srv := New(summarizerFunc(func(context.Context, string, string) (*summarize.Result, error) {
		return nil, errors.New("boom")
	}))

	rec := post(t, srv, map[string]string{"X-TENANT-ID": "tenant1"}, `{"input_text":"x"}`)
	if rec.Code != http.StatusInternalServerError || decodeError(t, rec).Code != CodeInternal {
		t.Errorf("code = %d", rec.Code)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	srv := New(summarizerFunc(func(context.Context, string, string) (*summarize.Result, error) {
		panic("kaboom")
	}), WithLogger(observe.NewLoggerWithWriter("debug", &buf)))

	rec := post(t, srv, map[string]string{"X-TENANT-ID": "tenant1"}, `{"input_text":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
	if !strings.Contains(buf.String(), "handler panic") {
		t.Errorf("log = %s, want handler panic", buf.String())
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	agg := health.NewAggregator()
	svc := newService(t, upstream.NewScript())
	agg.Register("cache", health.NewCacheChecker(svc.Cache(), health.CacheCheckerConfig{}))

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("summarize_total 0\n"))
	})
	srv := New(svc, WithHealth(agg), WithMetricsHandler(metrics))

	for _, path := range []string{"/healthz", "/readyz", "/health", "/health/cache", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	bare := New(svc)
	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without handler = %d, want 404", rec.Code)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	srv := New(newService(t, upstream.NewScript(upstream.Succeed("ok"))))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	req, _ := http.NewRequest(http.MethodPost, "http://"+ln.Addr().String()+SummarizePath, strings.NewReader(`{"input_text":"hi"}`))
	req.Header.Set("X-TENANT-ID", "tenant1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
