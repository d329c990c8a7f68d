package upstream

import (
	"context"
	"errors"

	"github.com/jonwraymond/enrichment/tenant"
)

// ErrUpstream marks a failed model call.
var ErrUpstream = errors.New("upstream: call failed")

// Invoker calls the summarization model.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations must honor cancellation and return ctx.Err()
//   (possibly wrapped) when ctx ends first.
// - Errors: a non-nil error means no summary was produced.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, settings tenant.Settings) (string, error)
}

// InvokerFunc adapts an ordinary function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string, settings tenant.Settings) (string, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, prompt string, settings tenant.Settings) (string, error) {
	return f(ctx, prompt, settings)
}

var _ Invoker = InvokerFunc(nil)
