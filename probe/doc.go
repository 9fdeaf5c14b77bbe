// Package probe answers a single question at startup: does this host
// support the vectorized instruction tier of the compute module?
//
// The check is self-contained. It encodes a minimal, statically known
// binary fragment that is only valid with fixed-width SIMD enabled and asks
// the engine's validator whether it compiles. Any error or panic from the
// validator is treated as "unsupported" rather than surfaced; a probing
// failure must never abort startup.
package probe
