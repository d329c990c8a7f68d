package summarize

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/enrichment/cache"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/prompt"
	"github.com/jonwraymond/enrichment/resilience"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/upstream"
)

// Result is a produced summary. Cached results are returned by value copy so
// callers cannot alter what later callers see.
type Result struct {
	InputText string    `json:"inputText"`
	Summary   string    `json:"summary"`
	TenantID  string    `json:"tenantId"`
	Timestamp time.Time `json:"timestamp"`
}

// Service summarizes text on behalf of tenants.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: cancellation stops upstream latency and backoff pauses promptly.
// - Errors: see Kind for the classification of returned errors.
type Service struct {
	store   tenant.Store
	builder prompt.Builder
	invoker upstream.Invoker

	cache *cache.TenantCache[Result]
	keyer cache.Keyer
	mode  CacheMode

	retry          *resilience.Retry
	attemptTimeout time.Duration
	now            func() time.Time

	logger    observe.Logger
	telemetry *observe.Telemetry
	group     *singleflight.Group
}

// New creates a Service.
func New(store tenant.Store, builder prompt.Builder, invoker upstream.Invoker, opts ...Option) (*Service, error) {
	if store == nil || builder == nil || invoker == nil {
		return nil, ErrNilDependency
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.cache == nil {
		o.cache = cache.NewTenantCache[Result]()
	}
	if o.telemetry == nil {
		o.telemetry = observe.NopTelemetry()
	}
	if o.logger == nil {
		o.logger = o.telemetry.Logger()
	}

	s := &Service{
		store:   store,
		builder: builder,
		invoker: invoker,
		cache:   o.cache,
		keyer:   o.keyer,
		mode:    o.mode,
		retry: resilience.NewRetry(resilience.RetryConfig{
			BaseDelay:  o.backoffBase,
			MaxDelay:   o.maxBackoff,
			Multiplier: 2,
			Strategy:   resilience.BackoffExponential,
			Sleep:      o.sleep,
		}),
		attemptTimeout: o.attemptTimeout,
		now:            o.now,
		logger:         o.logger.With(observe.F("component", "summarize")),
		telemetry: o.telemetry.WithClassifier(func(err error) string {
			return Kind(err).String()
		}),
	}
	if o.singleFlight {
		s.group = &singleflight.Group{}
	}
	return s, nil
}

// Cache returns the result cache.
func (s *Service) Cache() *cache.TenantCache[Result] {
	return s.cache
}

// Mode returns the cache mode.
func (s *Service) Mode() CacheMode {
	return s.mode
}

// Summarize returns a summary of inputText for tenantID.
func (s *Service) Summarize(ctx context.Context, tenantID, inputText string) (*Result, error) {
	var res *Result

	err := s.telemetry.Wrap(func(ctx context.Context, call *observe.Call) error {
		var err error
		res, err = s.summarize(ctx, call, inputText)
		return err
	})(ctx, observe.Call{TenantID: tenantID})

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) summarize(ctx context.Context, call *observe.Call, inputText string) (*Result, error) {
	s.logger.Info(ctx, "summarization request received", observe.F("tenant", call.TenantID))

	if strings.TrimSpace(inputText) == "" {
		return nil, ErrEmptyInput
	}

	fingerprint := s.keyer.Key(inputText)

	if s.mode == CacheReadFirst {
		cached, ok := s.cache.Get(call.TenantID, fingerprint)
		if ok {
			// Entries are only written for tenants that were found.
			call.Resolved = true
			s.telemetry.CacheLookup(ctx, *call, true)
			s.logger.Debug(ctx, "cache hit", observe.F("tenant", call.TenantID))
			return &cached, nil
		}
		// The miss is recorded once the tenant lookup has labeled the call.
		defer func() { s.telemetry.CacheLookup(ctx, *call, false) }()
	}

	if s.group == nil {
		out, err := s.compute(ctx, inputText, fingerprint, call.TenantID)
		call.Resolved = out.resolved
		return out.result, err
	}
	return s.computeShared(ctx, call, inputText, fingerprint)
}

// outcome is what one computation produced, shared across single-flight
// callers.
type outcome struct {
	result   *Result
	resolved bool
}

// flightKey is unambiguous for any tenant and fingerprint bytes.
func flightKey(tenantID, fingerprint string) string {
	return strconv.Itoa(len(tenantID)) + ":" + tenantID + fingerprint
}

// computeShared coalesces concurrent computations for one (tenant,
// fingerprint) pair. The leader's context drives the shared work; a follower
// whose own context is still live recomputes when the leader was canceled.
func (s *Service) computeShared(ctx context.Context, call *observe.Call, inputText, fingerprint string) (*Result, error) {
	tenantID := call.TenantID

	ch := s.group.DoChan(flightKey(tenantID, fingerprint), func() (any, error) {
		return s.compute(ctx, inputText, fingerprint, tenantID)
	})

	select {
	case <-ctx.Done():
		return nil, &EnrichmentError{TenantID: tenantID, Err: ctx.Err()}

	case r := <-ch:
		out := r.Val.(outcome)
		call.Resolved = out.resolved

		if r.Err != nil {
			if r.Shared && Kind(r.Err) == KindCanceled && ctx.Err() == nil {
				out, err := s.compute(ctx, inputText, fingerprint, tenantID)
				call.Resolved = out.resolved
				return out.result, err
			}
			return nil, r.Err
		}

		res := *out.result
		return &res, nil
	}
}

func (s *Service) compute(ctx context.Context, inputText, fingerprint, tenantID string) (outcome, error) {
	var out outcome

	settings, ok, err := s.store.FindByTenantID(ctx, tenantID)
	if err != nil {
		return out, &EnrichmentError{TenantID: tenantID, Err: err}
	}
	if !ok {
		s.logger.Warn(ctx, "tenant not found", observe.F("tenant", tenantID))
		return out, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
	}
	out.resolved = true
	call := observe.Call{TenantID: tenantID, Resolved: true}

	length := utf8.RuneCountInString(inputText)
	if length > settings.MaxInputLength {
		s.logger.Warn(ctx, "input exceeds token limit",
			observe.F("tenant", tenantID),
			observe.F("length", length),
			observe.F("limit", settings.MaxInputLength),
		)
		return out, &TokenLimitError{Actual: length, Limit: settings.MaxInputLength}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("summarize.model", settings.Model),
		attribute.String("summarize.tone", settings.Tone),
	)

	p := s.builder.Build(settings, inputText)

	summary, attempts, err := s.invoke(ctx, call, p, settings)
	s.telemetry.Attempts(ctx, call, attempts)
	if err != nil {
		return out, &EnrichmentError{TenantID: tenantID, Attempts: attempts, Err: err}
	}

	res := Result{
		InputText: inputText,
		Summary:   summary,
		TenantID:  tenantID,
		Timestamp: s.now(),
	}
	if evicted := s.cache.Put(tenantID, fingerprint, res); evicted {
		s.logger.Debug(ctx, "cache entry evicted", observe.F("tenant", tenantID))
	}
	out.result = &res
	return out, nil
}

// invoke calls upstream under the tenant's retry budget and reports how many
// attempts ran.
func (s *Service) invoke(ctx context.Context, call observe.Call, p string, settings tenant.Settings) (string, int, error) {
	var (
		summary  string
		attempts int
	)

	op := func(ctx context.Context) error {
		attempts++
		out, err := s.invoker.Invoke(ctx, p, settings)
		if err != nil {
			return err
		}
		summary = out
		return nil
	}

	retry := s.retry.
		WithMaxAttempts(settings.RetryAttempts).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.logger.Warn(ctx, "upstream attempt failed",
				observe.F("tenant", call.TenantID),
				observe.F("model", settings.Model),
				observe.F("attempt", attempt),
				observe.F("backoff_ms", delay.Milliseconds()),
				observe.Err(err),
			)
		})

	err := retry.Execute(ctx, resilience.Bounded(s.attemptTimeout, op))
	if err != nil {
		var exhausted *resilience.ExhaustedError
		if !errors.As(err, &exhausted) {
			s.logger.Warn(ctx, "upstream call abandoned", observe.F("attempts", attempts), observe.Err(err))
		}
		return "", attempts, err
	}
	return summary, attempts, nil
}
