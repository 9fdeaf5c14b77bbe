// Package acquire loads the clustered-lighting compute module through a
// tiered transport strategy and presents a single uniform handle regardless
// of which acceleration tier was loaded.
//
// Resolution order: a forced override (option or CLUSTER_LIGHTS_FORCE
// environment signal, read once) wins outright; an explicit artifact path
// bypasses negotiation for the native tiers; otherwise the vectorized tier
// is selected when preferred and supported, scalar when not. For a native
// tier the streaming strategy is tried first, then the buffered strategy;
// a strategy failure stays within the tier. Only when every native strategy
// fails, and fallback is permitted, is the legacy bridge loaded on the
// interpreter and wrapped by the shim.
//
// Acquire either returns a fully initialized LoadedModule or fails with an
// ExhaustedError carrying the chain of every attempt. Intermediate failures
// are logged, never surfaced.
package acquire
