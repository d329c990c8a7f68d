// Package summarize produces per-tenant summaries through a retrying upstream
// call, fronted by a per-tenant LRU cache.
//
// A call to [Service.Summarize] runs these steps in order:
//
//  1. Blank input fails with [ErrEmptyInput] before anything else is read.
//  2. In [CacheReadFirst] mode a cached result for the (tenant, fingerprint)
//     pair is returned without contacting the tenant store or upstream.
//  3. Unknown tenants fail with [ErrTenantNotFound].
//  4. Input longer than the tenant's MaxInputLength, counted in characters,
//     fails with a [*TokenLimitError].
//  5. The prompt is built and the upstream is tried up to RetryAttempts
//     times, pausing base*2^attempt between attempts. When every attempt
//     fails the error is an [*EnrichmentError].
//  6. The result is stored in the cache and returned.
//
// Failures never write the cache. Concurrent misses for the same tenant and
// text share one upstream computation unless single-flight is disabled.
//
// # Errors
//
// Use [Kind] to classify an error for transport mapping. All errors support
// errors.Is and errors.As.
package summarize
