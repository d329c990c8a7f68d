// Package upstream defines the summarization model boundary.
//
// An [Invoker] turns a prompt into a summary or fails. [Simulator] stands in
// for a real model: it sleeps for a model-dependent latency, fails at a
// configurable rate, and otherwise returns a deterministic summary derived
// from the prompt. [Script] replays a fixed sequence of outcomes and is meant
// for tests.
//
// # Errors
//
// Failures produced by this package wrap [ErrUpstream]. A canceled context
// surfaces as ctx.Err().
package upstream
