// Package observe provides logging, tracing, and metrics for summarization
// calls.
//
// An [Observer] owns the OpenTelemetry providers built from [Config]. A
// [Telemetry] wraps each call in a span named summarize.<tenant>, records the
// summarize.* instruments, and writes one structured log line per outcome.
// Loggers are zerolog-backed and read request correlation from the context
// (see [WithRequest]).
package observe
