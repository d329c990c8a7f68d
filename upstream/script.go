package upstream

import (
	"context"
	"sync"

	"github.com/jonwraymond/enrichment/tenant"
)

// Step is one scripted outcome.
type Step struct {
	Summary string
	Err     error
}

// Fail returns a failing step.
func Fail(err error) Step { return Step{Err: err} }

// Succeed returns a successful step.
func Succeed(summary string) Step { return Step{Summary: summary} }

// Script replays steps in order. Once exhausted it repeats the last step.
// It records every prompt it receives.
type Script struct {
	mu      sync.Mutex
	steps   []Step
	prompts []string
}

// NewScript creates a Script. With no steps every call succeeds with an
// empty summary.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Invoke returns the next scripted outcome. A done ctx is reported without
// consuming a step.
func (s *Script) Invoke(ctx context.Context, prompt string, _ tenant.Settings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if len(s.steps) == 0 {
		return "", nil
	}
	step := s.steps[min(i, len(s.steps)-1)]
	return step.Summary, step.Err
}

// Calls returns how many times Invoke consumed a step.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of the received prompts.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

var _ Invoker = (*Script)(nil)
