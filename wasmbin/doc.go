// Package wasmbin encodes minimal WebAssembly binary modules.
//
// It covers just enough of the binary format to synthesize the feature
// probe's SIMD fragment and self-contained test fixtures: function types,
// function bodies, memories and exports. Decoding, imports and the remaining
// sections are out of scope; real artifacts are compiled by the wazero
// engine, not by this package.
package wasmbin
