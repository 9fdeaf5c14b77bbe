// Package clusterlights provides the runtime infrastructure around the
// pre-compiled clustered-lighting compute module: capability-negotiated
// module loading and closed-loop adaptive performance control.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	clusterlights/       Root package with Tier, CallSurface, Memory and
//	                     the uniform LoadedModule handle
//	├── probe/           SIMD capability detection against a synthetic
//	                     binary fragment
//	├── acquire/         Tiered artifact acquisition (streaming, buffered,
//	                     legacy-emulated fallback)
//	├── shim/            Export-name and memory bridging for the legacy
//	                     bridge's ABI conventions
//	├── engine/          Engine façade owning a LoadedModule, the tile-span
//	                     knob and the light registry
//	├── control/         Adaptive frame-rate controller tuning the
//	                     tile-span bound
//	├── wasmbin/         Minimal WASM binary encoding for probe fragments
//	                     and test fixtures
//	└── errors/          Structured error types for diagnosis
//
// # Quick Start
//
// Acquire a module, hand it to the engine, and let the controller track a
// frame-rate target:
//
//	mod, err := acquire.Acquire(ctx, acquire.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err) // no tier could be loaded
//	}
//	defer mod.Close(ctx)
//
//	eng, err := engine.New(ctx, mod, engine.Config{Near: 0.1, Far: 1000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	ctrl := control.New(eng, control.DefaultConfig())
//	for running {
//	    eng.Update(ctx, sceneTime)
//	    ctrl.Step(frameElapsed)
//	}
//
// The tier actually loaded is negotiated at startup from host capability;
// callers written against the call surface never observe which tier backs
// the handle.
package clusterlights
