package summarize

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/enrichment/prompt"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/upstream"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testTenants extends the defaults with tenants shaped for specific cases.
func testTenants() map[string]tenant.Settings {
	t := tenant.Defaults()
	t["two-tries"] = tenant.Settings{Model: "gpt-3.5", Tone: tenant.ToneFriendly, MaxInputLength: 300, RetryAttempts: 2}
	t["one-try"] = tenant.Settings{Model: "gpt-3.5", MaxInputLength: 300, RetryAttempts: 1}
	return t
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type fixture struct {
	svc    *Service
	store  *tenant.MemoryStore
	sleeps *sleepRecorder
}

func newFixture(t *testing.T, invoker upstream.Invoker, opts ...Option) fixture {
	t.Helper()

	store, err := tenant.NewMemoryStore(testTenants())
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	sleeps := &sleepRecorder{}

	base := []Option{
		WithSleep(sleeps.sleep),
		WithClock(func() time.Time { return fixedNow }),
	}
	svc, err := New(store, prompt.NewTemplateBuilder(), invoker, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fixture{svc: svc, store: store, sleeps: sleeps}
}

func text(n int) string {
	return strings.Repeat("a", n)
}
