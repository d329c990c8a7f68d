// Package resilience provides retry with backoff for calls to unreliable
// dependencies.
//
// Retry runs an operation up to a fixed number of attempts and pauses between
// failed attempts. With the default exponential strategy the pause after
// attempt n is BaseDelay * Multiplier^n, so a 100ms base yields 200ms, 400ms,
// 800ms and so on. Pauses are interruptible: when the context is cancelled
// the retry loop returns immediately.
//
// Bounded gives each attempt its own deadline so that a hung attempt counts
// as a failure instead of stalling the whole sequence.
//
// # Usage
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   100 * time.Millisecond,
//	})
//
//	err := retry.Execute(ctx, resilience.Bounded(2*time.Second, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	}))
package resilience
