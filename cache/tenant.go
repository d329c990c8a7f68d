package cache

import (
	"sort"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// EvictFunc is called when an entry leaves a namespace, either because the
// namespace exceeded its capacity or because Evict removed it.
type EvictFunc[V any] func(tenant, fingerprint string, value V)

// Option configures a TenantCache.
type Option[V any] func(*TenantCache[V])

// WithMaxEntries sets the per-tenant capacity. Non-positive values are ignored.
func WithMaxEntries[V any](n int) Option[V] {
	return func(c *TenantCache[V]) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithOnEvict registers a callback for entries leaving a namespace.
func WithOnEvict[V any](fn EvictFunc[V]) Option[V] {
	return func(c *TenantCache[V]) {
		c.onEvict = fn
	}
}

// TenantCache keeps one bounded LRU per tenant.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use. Each namespace has
//   its own lock; the tenant map lock is only taken to find or create a
//   namespace, never while an entry is read or written.
// - Capacity: a namespace never holds more than MaxEntries entries.
// - Recency: Get and Put both move the touched entry to most-recently-used.
type TenantCache[V any] struct {
	maxEntries int
	onEvict    EvictFunc[V]

	mu         sync.RWMutex
	namespaces map[string]*lru.Cache[string, V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewTenantCache creates an empty cache. Capacity defaults to DefaultMaxEntries.
func NewTenantCache[V any](opts ...Option[V]) *TenantCache[V] {
	c := &TenantCache[V]{
		maxEntries: DefaultMaxEntries,
		namespaces: make(map[string]*lru.Cache[string, V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxEntries returns the per-tenant capacity.
func (c *TenantCache[V]) MaxEntries() int {
	return c.maxEntries
}

// Get returns the entry for (tenant, fingerprint) and marks it most recently
// used. It reports false when either the namespace or the entry is absent.
func (c *TenantCache[V]) Get(tenant, fingerprint string) (V, bool) {
	ns := c.lookup(tenant)
	if ns == nil {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	v, ok := ns.Get(fingerprint)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put inserts or replaces the entry for (tenant, fingerprint), creating the
// namespace on first use. When the namespace grows past capacity its least
// recently used entry is dropped and Put reports true.
func (c *TenantCache[V]) Put(tenant, fingerprint string, value V) bool {
	evicted := c.getOrCreate(tenant).Add(fingerprint, value)
	if evicted {
		c.evictions.Add(1)
	}
	return evicted
}

// Evict removes a single entry. Missing namespaces or entries are ignored.
func (c *TenantCache[V]) Evict(tenant, fingerprint string) {
	if ns := c.lookup(tenant); ns != nil {
		ns.Remove(fingerprint)
	}
}

// Clear drops every namespace and resets counters. Intended for tests.
func (c *TenantCache[V]) Clear() {
	c.mu.Lock()
	c.namespaces = make(map[string]*lru.Cache[string, V])
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Len returns the number of entries held for tenant.
func (c *TenantCache[V]) Len(tenant string) int {
	if ns := c.lookup(tenant); ns != nil {
		return ns.Len()
	}
	return 0
}

// Keys returns the fingerprints held for tenant, least recently used first.
func (c *TenantCache[V]) Keys(tenant string) []string {
	if ns := c.lookup(tenant); ns != nil {
		return ns.Keys()
	}
	return nil
}

// Tenants returns the known namespaces in sorted order.
func (c *TenantCache[V]) Tenants() []string {
	c.mu.RLock()
	tenants := make([]string, 0, len(c.namespaces))
	for t := range c.namespaces {
		tenants = append(tenants, t)
	}
	c.mu.RUnlock()

	sort.Strings(tenants)
	return tenants
}

// Stats returns a snapshot of counters and sizes.
func (c *TenantCache[V]) Stats() Stats {
	c.mu.RLock()
	namespaces := make([]*lru.Cache[string, V], 0, len(c.namespaces))
	for _, ns := range c.namespaces {
		namespaces = append(namespaces, ns)
	}
	c.mu.RUnlock()

	entries := 0
	for _, ns := range namespaces {
		entries += ns.Len()
	}

	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		Namespaces: len(namespaces),
		Entries:    entries,
	}
}

func (c *TenantCache[V]) lookup(tenant string) *lru.Cache[string, V] {
	c.mu.RLock()
	ns := c.namespaces[tenant]
	c.mu.RUnlock()
	return ns
}

// getOrCreate returns the namespace for tenant, creating it under the write
// lock so that racing first writers converge on a single namespace.
func (c *TenantCache[V]) getOrCreate(tenant string) *lru.Cache[string, V] {
	if ns := c.lookup(tenant); ns != nil {
		return ns
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ns, ok := c.namespaces[tenant]; ok {
		return ns
	}
	ns := c.newNamespace(tenant)
	c.namespaces[tenant] = ns
	return ns
}

func (c *TenantCache[V]) newNamespace(tenant string) *lru.Cache[string, V] {
	var onEvict func(string, V)
	if c.onEvict != nil {
		hook := c.onEvict
		onEvict = func(fingerprint string, value V) {
			hook(tenant, fingerprint, value)
		}
	}

	// lru.NewWithEvict only fails for a non-positive size, which the options
	// never allow.
	ns, err := lru.NewWithEvict[string, V](c.maxEntries, onEvict)
	if err != nil {
		panic(err)
	}
	return ns
}
