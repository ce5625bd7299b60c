// Package trace records what a bundling run did and how long each part took.
//
// # Usage
//
//	rsbundle bundle --trace=- --trace-level=stage ./my-crate
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "resolve", 0)
//	defer span.End("")
//
// # Implementations
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: immediate write (text or NDJSON)
//   - RingTracer: last N events in memory, dumped when a run fails
//   - MultiTracer: fan-out
//
// # Levels and scopes
//
// LevelRun emits whole bundle runs (ScopeRun), LevelStage adds pipeline
// stages (parse, resolve, transform, render, minify), LevelDetail adds one
// span per inlined module file (ScopeModule).
package trace
