package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jonwraymond/enrichment/auth"
	"github.com/jonwraymond/enrichment/health"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/summarize"
)

// SummarizePath is the summarize route.
const SummarizePath = "/api/v1/enrichment/summarize"

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Summarizer produces summaries. *summarize.Service satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, tenantID, inputText string) (*summarize.Result, error)
}

// Option configures a Server.
type Option func(*Server)

// WithAuthenticator sets how the tenant is resolved. Default: the
// X-TENANT-ID header.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Server) {
		if a != nil {
			s.authn = a
		}
	}
}

// WithTenantHeader names the header reported when no tenant is supplied.
func WithTenantHeader(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.tenantHeader = name
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHealth mounts the health endpoints for agg.
func WithHealth(agg *health.Aggregator) Option {
	return func(s *Server) { s.health = agg }
}

// WithMetricsHandler mounts h at /metrics. A nil handler is ignored.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in ListenAndServe.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// Server routes HTTP requests to the summarizer.
type Server struct {
	svc             Summarizer
	authn           auth.Authenticator
	tenantHeader    string
	logger          observe.Logger
	health          *health.Aggregator
	metrics         http.Handler
	maxBodyBytes    int64
	shutdownTimeout time.Duration

	handler http.Handler
}

// New creates a Server wired with all routes.
func New(svc Summarizer, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		authn:           auth.NewHeaderAuthenticator(""),
		tenantHeader:    auth.DefaultTenantHeader,
		logger:          observe.NopLogger(),
		maxBodyBytes:    DefaultMaxBodyBytes,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+SummarizePath, s.handleSummarize)
	if s.health != nil {
		health.RegisterHandlers(mux, s.health)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	s.handler = s.withRequestID(s.withRecover(s.withAccessLog(mux)))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "enrichd listening", observe.F("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
