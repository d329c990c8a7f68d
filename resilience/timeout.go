package resilience

import (
	"context"
	"errors"
	"time"
)

// Bounded wraps op so that each call gets its own deadline of d. When that
// deadline, rather than the caller's context, ends the call, the error is
// ErrTimeout so Retry treats it like any other failed attempt.
//
// op must honor ctx; Bounded does not abandon a running call. A non-positive
// d returns op unchanged.
func Bounded(d time.Duration, op func(context.Context) error) func(context.Context) error {
	if d <= 0 {
		return op
	}

	return func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		err := op(attemptCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
}
