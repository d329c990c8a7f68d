// Package httpapi exposes the summarizer over HTTP.
//
// Routes:
//
//	POST /api/v1/enrichment/summarize   {"input_text": "..."}
//	GET  /healthz /readyz /health       when a health aggregator is set
//	GET  /metrics                       when a metrics handler is set
//
// The tenant comes from the X-TENANT-ID header, or from a bearer token when
// a JWT authenticator is configured. Errors are JSON {"code","message"}.
package httpapi
