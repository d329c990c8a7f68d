package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestBounded_Success(t *testing.T) {
	executed := false
	op := Bounded(time.Second, func(ctx context.Context) error {
		executed = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("bounded op should see a deadline")
		}
		return nil
	})

	if err := op(context.Background()); err != nil {
		t.Errorf("op() error = %v", err)
	}
	if !executed {
		t.Error("operation was not executed")
	}
}

func TestBounded_PassesErrorsThrough(t *testing.T) {
	testErr := errors.New("test error")
	op := Bounded(time.Second, func(ctx context.Context) error {
		return testErr
	})

	if err := op(context.Background()); err != testErr {
		t.Errorf("op() error = %v, want %v", err, testErr)
	}
}

func TestBounded_Timeout(t *testing.T) {
	op := Bounded(10*time.Millisecond, waitForDone)

	start := time.Now()
	if err := op(context.Background()); err != ErrTimeout {
		t.Errorf("op() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("op() took %v", elapsed)
	}
}

func TestBounded_CallerCancellation(t *testing.T) {
	op := Bounded(time.Second, waitForDone)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := op(ctx); err != context.Canceled {
		t.Errorf("op() error = %v, want context.Canceled", err)
	}
}

func TestBounded_ZeroDuration(t *testing.T) {
	op := Bounded(0, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			t.Error("unbounded op should not see a deadline")
		}
		return nil
	})

	if err := op(context.Background()); err != nil {
		t.Errorf("op() error = %v", err)
	}
}

func TestBounded_RetriesTimedOutAttempts(t *testing.T) {
	var delays []time.Duration
	r := NewRetry(RetryConfig{MaxAttempts: 3, Sleep: recordSleep(&delays)})

	attempts := 0
	err := r.Execute(context.Background(), Bounded(5*time.Millisecond, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return waitForDone(ctx)
		}
		return nil
	}))

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
