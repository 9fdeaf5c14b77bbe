// Package errors provides structured error types for the cluster-lights
// loader and engine.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes the tier, load strategy and artifact
// location involved, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseTransport, errors.KindCompile).
//		Tier("native-scalar").
//		Strategy("buffered").
//		Artifact("cluster-lights.wasm").
//		Cause(compileErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ContentType("cluster-lights.wasm", "text/plain")
//	err := errors.Fetch("streaming", url, ioErr)
//
// ExhaustedError is the single terminal failure surfaced by acquisition; it
// aggregates every failed tier/strategy attempt. All errors implement the
// standard error interface and support errors.Is/As.
package errors
