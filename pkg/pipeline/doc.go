// Package pipeline implements the Cascade execution engine.
//
// A pipeline is an ordered list of steps. Each step names an operation from a
// registry and supplies named inputs that are either literal values or
// references into earlier steps' outputs ($output_N or {{alias}} syntax,
// optionally followed by a dotted field path). The engine executes steps
// strictly in declaration order, threading data between them through an
// append-only per-run output store, and halts at the first failing step.
//
// All run state is allocated per call to Execute; an Engine is safe for
// concurrent use as long as its registry is read-only, which is the expected
// usage.
package pipeline
