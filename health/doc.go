// Package health reports whether the summarization service can take traffic.
//
// A [Checker] reports one component. [CacheChecker] watches the tenant cache,
// [StoreChecker] pings the tenant store, and [MemoryChecker] watches the heap.
// An [Aggregator] runs registered checkers concurrently under one deadline and
// folds their results into a single [Status]:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(svc.Cache(), health.CacheCheckerConfig{}))
//	agg.Register("tenants", health.NewStoreChecker(store))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// RegisterHandlers mounts /healthz (liveness), /readyz (readiness) and
// /health (JSON detail).
package health
