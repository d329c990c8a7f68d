package summarize

import (
	"time"

	"github.com/jonwraymond/enrichment/cache"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/resilience"
)

// CacheMode selects how Summarize uses the cache.
type CacheMode int

const (
	// CacheReadFirst serves cached results before resolving the tenant.
	CacheReadFirst CacheMode = iota

	// CacheWriteThrough always recomputes and only writes the cache. Cached
	// entries are then only useful for inspection.
	CacheWriteThrough
)

func (m CacheMode) String() string {
	switch m {
	case CacheReadFirst:
		return "read-first"
	case CacheWriteThrough:
		return "write-through"
	default:
		return "unknown"
	}
}

// ParseCacheMode parses "read-first" or "write-through". The empty string is
// read-first.
func ParseCacheMode(s string) (CacheMode, bool) {
	switch s {
	case "", "read-first":
		return CacheReadFirst, true
	case "write-through":
		return CacheWriteThrough, true
	default:
		return 0, false
	}
}

// Default backoff settings.
const (
	DefaultBackoffBase = 100 * time.Millisecond
	DefaultMaxBackoff  = 30 * time.Second
)

type options struct {
	cache          *cache.TenantCache[Result]
	keyer          cache.Keyer
	mode           CacheMode
	backoffBase    time.Duration
	maxBackoff     time.Duration
	attemptTimeout time.Duration
	sleep          resilience.SleepFunc
	now            func() time.Time
	logger         observe.Logger
	telemetry      *observe.Telemetry
	singleFlight   bool
}

func defaultOptions() options {
	return options{
		mode:         CacheReadFirst,
		keyer:        cache.NewDefaultKeyer(),
		backoffBase:  DefaultBackoffBase,
		maxBackoff:   DefaultMaxBackoff,
		sleep:        resilience.Sleep,
		now:          time.Now,
		singleFlight: true,
	}
}

// Option configures a Service.
type Option func(*options)

// WithCache sets the result cache. Default: a new cache with
// cache.DefaultMaxEntries per tenant.
func WithCache(c *cache.TenantCache[Result]) Option {
	return func(o *options) { o.cache = c }
}

// WithKeyer replaces the SHA-256 keyer for fingerprinting input text.
func WithKeyer(k cache.Keyer) Option {
	return func(o *options) {
		if k != nil {
			o.keyer = k
		}
	}
}

// WithCacheMode selects read-first or write-through caching.
func WithCacheMode(m CacheMode) Option {
	return func(o *options) { o.mode = m }
}

// WithBackoffBase sets the unit of the base*2^attempt backoff.
func WithBackoffBase(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.backoffBase = d
		}
	}
}

// WithMaxBackoff caps a single backoff pause.
func WithMaxBackoff(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxBackoff = d
		}
	}
}

// WithAttemptTimeout bounds each upstream attempt. Zero means no bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) { o.attemptTimeout = d }
}

// WithSleep replaces the backoff pause. Tests use it to record delays.
func WithSleep(fn resilience.SleepFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// WithClock sets the source of result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the service logger. Default: the telemetry logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTelemetry sets spans, metrics, and outcome logging.
func WithTelemetry(t *observe.Telemetry) Option {
	return func(o *options) { o.telemetry = t }
}

// WithSingleFlight toggles coalescing of concurrent misses. Default: on.
func WithSingleFlight(enabled bool) Option {
	return func(o *options) { o.singleFlight = enabled }
}
