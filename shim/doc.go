// Package shim bridges the legacy bridge module's ABI conventions to the
// uniform call surface.
//
// The legacy bridge exports operations under a fixed marker prefix and
// exposes its linear memory as a runtime-managed byte array. The shim is a
// compatibility layer, not a reimplementation: it builds an explicit lookup
// table once at wrap time (exact name and bare alias for each prefixed
// export) and synthesizes the flat memory view, so code written against the
// uniform surface cannot tell which tier it is calling. A name that resolves
// under neither convention yields absence, which callers treat as
// "operation not supported by this tier".
package shim
