package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy defines how delays increase between retries.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the base delay by Multiplier^attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the unit the backoff is computed from.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the maximum delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds up to 25% randomness to delays.
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called after a failed attempt, before the backoff pause.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep performs the backoff pause.
	// Default: Sleep
	Sleep SleepFunc
}

// Retry implements retry with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	if config.Sleep == nil {
		config.Sleep = Sleep
	}

	return &Retry{config: config}
}

// WithMaxAttempts returns a copy of r limited to n attempts. Values below one
// are treated as one.
func (r *Retry) WithMaxAttempts(n int) *Retry {
	if n < 1 {
		n = 1
	}
	cfg := r.config
	cfg.MaxAttempts = n
	return &Retry{config: cfg}
}

// WithOnRetry returns a copy of r that calls fn before each backoff pause.
func (r *Retry) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Retry {
	cfg := r.config
	cfg.OnRetry = fn
	return &Retry{config: cfg}
}

// Execute runs op until it succeeds, returns a non-retryable error, or the
// attempts run out. The pause between attempts only happens when another
// attempt remains.
//
// Errors:
//   - nil on success
//   - the op error unchanged when RetryIf rejects it
//   - ctx.Err() when ctx is done before an attempt or during a pause
//   - *ExhaustedError wrapping the last op error when attempts run out
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		// Stop once the caller has given up.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !r.config.RetryIf(err) {
			return err
		}

		// Don't retry if this was the last attempt
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		if err := r.config.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &ExhaustedError{Attempts: r.config.MaxAttempts, Err: lastErr}
}

// Delay returns the pause that follows failed attempt number attempt.
func (r *Retry) Delay(attempt int) time.Duration {
	return r.calculateDelay(attempt)
}

func (r *Retry) calculateDelay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.BaseDelay

	case BackoffLinear:
		delay = r.config.BaseDelay * time.Duration(attempt)

	case BackoffExponential:
		multiplier := math.Pow(r.config.Multiplier, float64(attempt))
		delay = time.Duration(float64(r.config.BaseDelay) * multiplier)
	}

	// Cap at max delay; also guards against float overflow.
	if delay > r.config.MaxDelay || delay < 0 {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		jitter := time.Duration(rand.Int64N(int64(delay / 4)))
		delay = delay + jitter
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// Sleep pauses for d, returning early with ctx.Err() if ctx is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
