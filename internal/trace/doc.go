// Package trace records where mend spends its time: commands, directory
// runs, binding passes, proposal requests and single rule generations.
//
// Enable it from the CLI:
//
//	mend diagnose --trace=- --trace-level=phase src/
//	mend assist A.java --at 12:9 --trace=assist.json --trace-level=debug
//
// Tracers: Nop (disabled), StreamTracer (writes as events happen),
// RingTracer (keeps the last events in memory, dumped when a command fails)
// and MultiTracer (both). Output is text, NDJSON or the Chrome trace event
// format, picked from the output file extension unless set explicitly.
//
// Levels filter scopes: phase keeps driver and pass spans, detail adds
// per-unit spans, debug adds one span per rule generation.
//
// The tracer and the current span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "proposals")
//	defer span.End("")
package trace
