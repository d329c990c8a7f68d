// Package cache provides a tenant-partitioned, size-bounded LRU cache.
//
// Every tenant owns an independent namespace with its own recency order and
// capacity. Namespaces are created lazily on first write and are never shared:
// a fingerprint stored under one tenant is invisible to every other tenant.
// Operations on different namespaces never contend on the same lock.
package cache
