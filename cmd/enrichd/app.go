package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/jonwraymond/enrichment/auth"
	"github.com/jonwraymond/enrichment/cache"
	"github.com/jonwraymond/enrichment/config"
	"github.com/jonwraymond/enrichment/health"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/prompt"
	"github.com/jonwraymond/enrichment/summarize"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/tenant/sqlite"
	"github.com/jonwraymond/enrichment/upstream"
)

// app holds the wired service graph for one process.
type app struct {
	cfg    *config.Config
	obs    observe.Observer
	logger observe.Logger
	svc    *summarize.Service
	health *health.Aggregator
	authn  auth.Authenticator

	closers []func(context.Context) error
}

// loadConfig loads path, or the built-in defaults when path is empty.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(ctx, path)
}

// newApp wires cfg into a running service graph. Log and stdout exporter
// output goes to logOut. A nil invoker means the configured Simulator.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer, invoker upstream.Invoker) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	obsCfg := cfg.Observe
	obsCfg.Writer = logOut
	a.obs, err = observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observer: %w", err)
	}
	a.closers = append(a.closers, a.obs.Shutdown)
	a.logger = a.obs.Logger().With(observe.F("service", cfg.Observe.ServiceName))

	store, pinger, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	if invoker == nil {
		invoker = newSimulator(cfg.Upstream)
	}

	tel, err := observe.TelemetryFromObserver(a.obs)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	cacheLog := a.logger.With(observe.F("component", "cache"))
	tc := cache.NewTenantCache[summarize.Result](
		cache.WithMaxEntries[summarize.Result](cfg.Cache.MaxEntries),
		cache.WithOnEvict[summarize.Result](func(tenantID, _ string, _ summarize.Result) {
			cacheLog.Debug(context.Background(), "evicted", observe.F("tenant", tenantID))
		}),
	)

	a.svc, err = summarize.New(store, prompt.NewTemplateBuilder(), invoker,
		summarize.WithCache(tc),
		summarize.WithCacheMode(cfg.CacheMode()),
		summarize.WithBackoffBase(cfg.Retry.BaseDelay),
		summarize.WithMaxBackoff(cfg.Retry.MaxDelay),
		summarize.WithAttemptTimeout(cfg.Retry.AttemptTimeout),
		summarize.WithLogger(a.logger),
		summarize.WithTelemetry(tel),
	)
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}

	a.health = health.NewAggregator(health.AggregatorConfig{Timeout: cfg.Health.Timeout})
	a.health.Register("cache", health.NewCacheChecker(tc, health.CacheCheckerConfig{MaxNamespaces: cfg.Health.MaxNamespaces}))
	a.health.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	if pinger != nil {
		a.health.Register("tenant_store", health.NewStoreChecker(pinger))
	}

	a.authn = newAuthenticator(cfg.Auth)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (tenant.Store, health.Pinger, error) {
	if a.cfg.TenantDB == "" {
		store, err := tenant.NewMemoryStore(a.cfg.Tenants)
		if err != nil {
			return nil, nil, fmt.Errorf("init tenant store: %w", err)
		}
		return store, nil, nil
	}

	store, err := sqlite.Open(a.cfg.TenantDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open tenant db: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	if err := store.Seed(ctx, a.cfg.Tenants); err != nil {
		return nil, nil, fmt.Errorf("seed tenant db: %w", err)
	}
	return store, store, nil
}

func newSimulator(cfg config.UpstreamConfig) *upstream.Simulator {
	opts := []upstream.SimulatorOption{upstream.WithFailureRate(cfg.FailureRate)}
	if cfg.Latency > 0 {
		opts = append(opts, upstream.WithFixedLatency(cfg.Latency))
	}
	if cfg.Seed != 0 {
		// #nosec G404 -- simulated failures, not security sensitive.
		opts = append(opts, upstream.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}
	return upstream.NewSimulator(opts...)
}

func newAuthenticator(cfg config.AuthConfig) auth.Authenticator {
	header := auth.NewHeaderAuthenticator(cfg.TenantHeader)
	if !cfg.JWT.Enabled {
		return header
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.JWT.JWTConfig, auth.NewStaticKeyProvider([]byte(cfg.JWT.SigningKey)))
	if cfg.JWT.Required {
		return jwtAuth
	}
	return auth.NewCompositeAuthenticator(jwtAuth, header)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
