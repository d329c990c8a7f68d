// Package config loads the enrichd configuration file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/enrichment/auth"
	"github.com/jonwraymond/enrichment/cache"
	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/observe/exporters"
	"github.com/jonwraymond/enrichment/secret"
	"github.com/jonwraymond/enrichment/summarize"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/upstream"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Config holds all enrichd configuration.
type Config struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// SecretsDir roots relative secretref:file: refs. Default: the directory
	// of the config file.
	SecretsDir string `yaml:"secrets_dir"`

	Cache    CacheConfig    `yaml:"cache"`
	Retry    RetryConfig    `yaml:"retry"`
	Upstream UpstreamConfig `yaml:"upstream"`

	// Tenants seeds the tenant store. Omitted means the three demo tenants.
	Tenants map[string]tenant.Settings `yaml:"tenants"`

	// TenantDB is an optional sqlite path. When set, Tenants seeds it.
	TenantDB string `yaml:"tenant_db"`

	Auth    AuthConfig     `yaml:"auth"`
	Observe observe.Config `yaml:"observe"`
	Health  HealthConfig   `yaml:"health"`
}

// CacheConfig controls the per-tenant summary cache.
type CacheConfig struct {
	MaxEntries int    `yaml:"max_entries"`
	Mode       string `yaml:"mode"` // read-first|write-through
}

// RetryConfig controls upstream retries.
type RetryConfig struct {
	BaseDelay      time.Duration `yaml:"base_delay"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
}

// UpstreamConfig controls the simulated model.
type UpstreamConfig struct {
	FailureRate float64 `yaml:"failure_rate"`

	// Latency overrides the model-based latency when positive.
	Latency time.Duration `yaml:"latency"`

	// Seed makes failures reproducible when non-zero.
	Seed uint64 `yaml:"seed"`
}

// AuthConfig controls how requests name their tenant.
type AuthConfig struct {
	TenantHeader string    `yaml:"tenant_header"`
	JWT          JWTConfig `yaml:"jwt"`
}

// JWTConfig enables bearer-token tenant resolution.
type JWTConfig struct {
	Enabled bool `yaml:"enabled"`

	// Required rejects requests that only carry the tenant header.
	Required bool `yaml:"required"`

	// SigningKey is the HMAC key. Supports ${VAR} and secretref: values.
	SigningKey string `yaml:"signing_key"`

	auth.JWTConfig `yaml:",inline"`
}

// HealthConfig tunes readiness checks.
type HealthConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxNamespaces int           `yaml:"max_namespaces"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen:          ":8080",
		ShutdownTimeout: 5 * time.Second,
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			Mode:       summarize.CacheReadFirst.String(),
		},
		Retry: RetryConfig{
			BaseDelay: summarize.DefaultBackoffBase,
			MaxDelay:  summarize.DefaultMaxBackoff,
		},
		Upstream: UpstreamConfig{
			FailureRate: upstream.DefaultFailureRate,
		},
		Tenants: tenant.Defaults(),
		Auth: AuthConfig{
			TenantHeader: auth.DefaultTenantHeader,
		},
		Observe: observe.Config{
			ServiceName: "enrichd",
			Version:     "dev",
			Tracing:     observe.TracingConfig{Exporter: exporters.None, SamplePct: 1},
			Metrics:     observe.MetricsConfig{Exporter: exporters.None},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
		Health: HealthConfig{
			Timeout: 2 * time.Second,
		},
	}
}

// Load reads a YAML config file, expands environment variables strictly,
// resolves the JWT signing key, and validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	if cfg.SecretsDir == "" {
		cfg.SecretsDir = filepath.Dir(path)
	}
	if err := cfg.resolveSecrets(ctx); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected. Secrets are
// not resolved and the result is not validated.
func Parse(_ context.Context, data []byte) (*Config, error) {
	expanded, err := secret.ExpandEnvStrict(string(data))
	if err != nil {
		return nil, fmt.Errorf("expand config: %w", err)
	}

	cfg := Default()
	cfg.Tenants = nil

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Tenants == nil {
		cfg.Tenants = tenant.Defaults()
	}
	return cfg, nil
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	if c.Auth.JWT.SigningKey == "" {
		return nil
	}
	r, err := secret.NewDefaultResolver(c.SecretsDir)
	if err != nil {
		return err
	}
	key, err := r.ResolveValue(ctx, c.Auth.JWT.SigningKey)
	if err != nil {
		return fmt.Errorf("resolve auth.jwt.signing_key: %w", err)
	}
	c.Auth.JWT.SigningKey = key
	return nil
}

// CacheMode returns the parsed cache mode. Call after Validate.
func (c *Config) CacheMode() summarize.CacheMode {
	mode, _ := summarize.ParseCacheMode(c.Cache.Mode)
	return mode
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Listen) == "" {
		fail("listen is required")
	}
	if c.Cache.MaxEntries <= 0 {
		fail("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if _, ok := summarize.ParseCacheMode(c.Cache.Mode); !ok {
		fail("cache.mode %q is not read-first or write-through", c.Cache.Mode)
	}
	if c.Retry.BaseDelay <= 0 {
		fail("retry.base_delay must be positive, got %s", c.Retry.BaseDelay)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		fail("retry.max_delay %s is below retry.base_delay %s", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.Retry.AttemptTimeout < 0 {
		fail("retry.attempt_timeout must not be negative, got %s", c.Retry.AttemptTimeout)
	}
	if c.Upstream.FailureRate < 0 || c.Upstream.FailureRate > 1 {
		fail("upstream.failure_rate must be between 0 and 1, got %g", c.Upstream.FailureRate)
	}
	if c.Upstream.Latency < 0 {
		fail("upstream.latency must not be negative, got %s", c.Upstream.Latency)
	}
	if len(c.Tenants) == 0 && c.TenantDB == "" {
		fail("no tenants configured and no tenant_db set")
	}
	for id, s := range c.Tenants {
		if strings.TrimSpace(id) == "" {
			fail("tenant id is required")
			continue
		}
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: tenants.%s: %w", ErrInvalidConfig, id, err))
		}
	}
	if c.Auth.JWT.Enabled && c.Auth.JWT.SigningKey == "" {
		fail("auth.jwt.signing_key is required when auth.jwt.enabled")
	}
	if c.Auth.JWT.Required && !c.Auth.JWT.Enabled {
		fail("auth.jwt.required needs auth.jwt.enabled")
	}
	if c.Health.Timeout < 0 {
		fail("health.timeout must not be negative, got %s", c.Health.Timeout)
	}
	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}
