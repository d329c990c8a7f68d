package upstream

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/enrichment/resilience"
	"github.com/jonwraymond/enrichment/tenant"
)

// DefaultFailureRate is the share of simulated calls that fail.
const DefaultFailureRate = 0.2

// Simulated latencies.
const (
	LargeModelLatency = time.Second
	SmallModelLatency = 500 * time.Millisecond
)

const (
	summaryPrefix      = "Summary: "
	summaryTailLines   = 5
	summaryMinLineLen  = 10
	summaryLineCut     = 30
	summaryShortPrompt = 3
)

var toneSuffixes = map[string]string{
	tenant.ToneFormal:    "In conclusion, this summarizes the key points.",
	tenant.ToneFriendly:  "Hope this helps you understand the main ideas!",
	tenant.ToneTechnical: "Technical analysis complete. Key findings documented above.",
}

// ModelLatency returns LargeModelLatency for models whose name contains "4"
// and SmallModelLatency otherwise.
func ModelLatency(model string) time.Duration {
	if strings.Contains(model, "4") {
		return LargeModelLatency
	}
	return SmallModelLatency
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithFailureRate sets the failure probability, clamped to [0, 1].
func WithFailureRate(rate float64) SimulatorOption {
	return func(s *Simulator) {
		s.failureRate = min(max(rate, 0), 1)
	}
}

// WithLatency replaces ModelLatency.
func WithLatency(fn func(model string) time.Duration) SimulatorOption {
	return func(s *Simulator) {
		if fn != nil {
			s.latency = fn
		}
	}
}

// WithFixedLatency uses d for every model.
func WithFixedLatency(d time.Duration) SimulatorOption {
	return WithLatency(func(string) time.Duration { return d })
}

// WithRand sets the random source used to decide failures.
func WithRand(r *rand.Rand) SimulatorOption {
	return func(s *Simulator) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSleep replaces resilience.Sleep for the latency pause.
func WithSleep(fn resilience.SleepFunc) SimulatorOption {
	return func(s *Simulator) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Simulator is an Invoker that imitates a hosted model.
type Simulator struct {
	failureRate float64
	latency     func(model string) time.Duration
	sleep       resilience.SleepFunc

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator with DefaultFailureRate and ModelLatency.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		failureRate: DefaultFailureRate,
		latency:     ModelLatency,
		sleep:       resilience.Sleep,
		// #nosec G404 -- failure injection is not security sensitive.
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailureRate returns the configured failure probability.
func (s *Simulator) FailureRate() float64 {
	return s.failureRate
}

// Invoke waits out the model latency, then fails or returns Summarize(prompt).
func (s *Simulator) Invoke(ctx context.Context, prompt string, settings tenant.Settings) (string, error) {
	if err := s.sleep(ctx, s.latency(settings.Model)); err != nil {
		return "", err
	}

	if s.fail() {
		return "", fmt.Errorf("%w: simulated failure for model %s", ErrUpstream, settings.Model)
	}
	return Summarize(prompt, settings), nil
}

func (s *Simulator) fail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.failureRate
}

// Summarize builds the simulated summary for prompt.
//
// Prompts longer than three lines are summarized by the first 30 characters
// of each of the last five lines that exceed 10 characters. Shorter prompts
// get a model placeholder. A tone-specific closing sentence is appended.
func Summarize(prompt string, settings tenant.Settings) string {
	var b strings.Builder
	b.WriteString(summaryPrefix)

	lines := strings.Split(strings.TrimRight(prompt, "\n"), "\n")
	if len(lines) > summaryShortPrompt {
		for _, line := range lines[max(len(lines)-summaryTailLines, 0):] {
			runes := []rune(line)
			if len(runes) <= summaryMinLineLen {
				continue
			}
			b.WriteString(string(runes[:min(len(runes), summaryLineCut)]))
			b.WriteString("... ")
		}
	} else {
		b.WriteString("This is a simulated summary for ")
		b.WriteString(settings.Model)
	}

	b.WriteString(toneSuffixes[settings.Tone])
	return b.String()
}

var _ Invoker = (*Simulator)(nil)
