// Package tenant holds per-tenant summarization settings and the stores that
// look them up.
package tenant
