package health

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jonwraymond/enrichment/cache"
)

// StatsSource exposes cache statistics. *cache.TenantCache satisfies it.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// MaxNamespaces marks the cache degraded once more tenants than this hold
	// entries. Zero disables the limit.
	MaxNamespaces int
}

// CacheChecker reports tenant cache occupancy and hit ratio.
type CacheChecker struct {
	source StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a CacheChecker for source.
func NewCacheChecker(source StatsSource, config CacheCheckerConfig) *CacheChecker {
	return &CacheChecker{source: source, config: config}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check reports the cache snapshot.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if c.source == nil {
		return Unhealthy("cache not configured", cache.ErrNilCache)
	}
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	stats := c.source.Stats()
	details := map[string]any{
		"namespaces": stats.Namespaces,
		"entries":    stats.Entries,
		"hits":       stats.Hits,
		"misses":     stats.Misses,
		"evictions":  stats.Evictions,
		"hit_ratio":  stats.HitRatio(),
	}

	if c.config.MaxNamespaces > 0 && stats.Namespaces > c.config.MaxNamespaces {
		return Degraded(fmt.Sprintf("%d tenant namespaces exceed limit %d", stats.Namespaces, c.config.MaxNamespaces)).
			WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries across %d tenants", stats.Entries, stats.Namespaces)).
		WithDetails(details)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings the tenant settings store.
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a StoreChecker.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns "tenant_store".
func (s *StoreChecker) Name() string { return "tenant_store" }

// Check pings the store.
func (s *StoreChecker) Check(ctx context.Context) Result {
	if err := s.store.Ping(ctx); err != nil {
		return Unhealthy("tenant store unreachable", err)
	}
	return Healthy("tenant store reachable")
}

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the heap/sys ratio that triggers degraded status.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the ratio that triggers unhealthy status.
	// Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the heap budget in bytes. Zero uses runtime Sys.
	MaxAlloc uint64
}

// MemoryChecker checks heap usage against a budget.
type MemoryChecker struct {
	config MemoryCheckerConfig
	read   func(*runtime.MemStats)
}

// NewMemoryChecker creates a memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= config.WarningThreshold || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = max(0.95, config.WarningThreshold+0.01)
	}
	return &MemoryChecker{config: config, read: runtime.ReadMemStats}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string { return "memory" }

// Check compares the live heap with the budget.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	m.read(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return Healthy("memory stats unavailable")
	}

	ratio := float64(stats.Alloc) / float64(budget)
	details := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"budget_bytes":  budget,
		"usage_percent": ratio * 100,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100), ErrCheckFailed).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)).WithDetails(details)
	}
}
