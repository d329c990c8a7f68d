package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/enrichment/cache"
	"github.com/jonwraymond/enrichment/health"
)

func ExampleAggregator() {
	tc := cache.NewTenantCache[string]()
	tc.Put("tenant1", cache.Fingerprint("hello"), "summary")

	agg := health.NewAggregator()
	agg.Register("cache", health.NewCacheChecker(tc, health.CacheCheckerConfig{MaxNamespaces: 10}))

	results := agg.CheckAll(context.Background())
	fmt.Println(agg.OverallStatus(results))
	fmt.Println(results["cache"].Message)
	// Output:
	// healthy
	// 1 entries across 1 tenants
}
