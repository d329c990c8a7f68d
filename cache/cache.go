package cache

import "errors"

// DefaultMaxEntries is the per-tenant capacity used when none is configured.
const DefaultMaxEntries = 5

// Sentinel errors for cache operations.
var (
	ErrNilCache = errors.New("cache: cache is nil")
)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Namespaces int
	Entries    int
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was read.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
