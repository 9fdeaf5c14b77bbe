package acquire

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
	"github.com/JeffreyCastellano/cluster-lights-go/errors"
	"github.com/JeffreyCastellano/cluster-lights-go/shim"
)

// acquireLegacy loads the legacy bridge artifact on the pure-software
// interpreter and wraps it with the ABI shim into the uniform module shape.
func acquireLegacy(ctx context.Context, opts *Options, attempts *[]errors.Attempt) (*clusterlights.LoadedModule, error) {
	log := opts.logger()
	tier := clusterlights.TierLegacyEmulated
	artifact := opts.resolve(ArtifactLegacy)

	fail := func(err error) (*clusterlights.LoadedModule, error) {
		*attempts = append(*attempts, errors.Attempt{Tier: tier.String(), Artifact: artifact, Err: err})
		log.Debug("legacy tier failed", zap.String("artifact", artifact), zap.Error(err))
		return nil, err
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())

	// The bridge historically mis-reports its content type, so only the
	// buffered strategy applies here.
	compiled, err := bufferedCompile(ctx, rt, opts, artifact)
	if err != nil {
		_ = rt.Close(ctx)
		return fail(err)
	}

	// Defer ctors; readiness is observed through the one-shot signal below.
	inst, err := rt.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("cluster-lights-legacy").WithStartFunctions())
	if err != nil {
		_ = rt.Close(ctx)
		return fail(errors.Instantiation(errors.PhaseLegacy, err))
	}

	// The bridge initializes asynchronously. A single-use completion
	// signal scoped to this acquisition replaces its global init hook;
	// nothing outlives the select below.
	ready := make(chan error, 1)
	go func() { ready <- runLegacyInit(ctx, inst) }()

	select {
	case err := <-ready:
		if err != nil {
			_ = rt.Close(ctx)
			return fail(errors.New(errors.PhaseLegacy, errors.KindInstantiation).
				Artifact(artifact).
				Detail("legacy bridge initialization").
				Cause(err).
				Build())
		}
	case <-time.After(opts.LegacyInitTimeout):
		_ = rt.Close(ctx)
		return fail(errors.New(errors.PhaseLegacy, errors.KindTimeout).
			Artifact(artifact).
			Detail("no readiness signal within %s", opts.LegacyInitTimeout).
			Build())
	case <-ctx.Done():
		_ = rt.Close(ctx)
		return fail(errors.New(errors.PhaseLegacy, errors.KindTimeout).
			Artifact(artifact).
			Cause(ctx.Err()).
			Build())
	}

	log.Info("acquired compute module",
		zap.Stringer("tier", tier), zap.String("artifact", artifact))
	return clusterlights.NewLoadedModule(
		shim.Wrap(inst),
		shim.WrapMemory(inst.Memory()),
		tier,
		rt.Close,
	), nil
}

// runLegacyInit drives the bridge's initialization export, trying the
// conventional names in order. A bridge without one is ready immediately.
func runLegacyInit(ctx context.Context, inst api.Module) error {
	for _, name := range []string{"__wasm_call_ctors", "_initialize", "initialize"} {
		if fn := inst.ExportedFunction(name); fn != nil {
			_, err := fn.Call(ctx)
			return err
		}
	}
	return nil
}
