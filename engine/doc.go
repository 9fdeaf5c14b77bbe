// Package engine is the façade over a loaded compute module: it owns the
// module handle, the tile-span cost/quality knob, and the light registry.
//
// The registry is deliberately thin. Every mutation is a call over the
// uniform call surface; positions, colors and cluster assignments live in
// the module's linear memory, and the engine only hands the rendering
// integration the offsets it needs. No clustering or shading math happens
// on the host side.
//
// The engine is driven by a single per-frame owner and is not safe for
// concurrent use.
package engine
