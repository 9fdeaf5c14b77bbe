package acquire

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
	"github.com/JeffreyCastellano/cluster-lights-go/errors"
	"github.com/JeffreyCastellano/cluster-lights-go/probe"
	"github.com/JeffreyCastellano/cluster-lights-go/shim"
)

// Acquire resolves, fetches and instantiates a compute module. It either
// returns a fully initialized LoadedModule or fails; callers never observe
// a partially constructed handle. Every recoverable intermediate failure is
// logged and carried in the terminal ExhaustedError's attempt chain.
//
// There is no cancellation primitive for an in-flight acquisition beyond
// ctx: once a strategy starts it completes or fails in finite time.
func Acquire(ctx context.Context, opts Options) (*clusterlights.LoadedModule, error) {
	log := opts.logger()
	if opts.LegacyInitTimeout <= 0 {
		opts.LegacyInitTimeout = defaultLegacyInitTimeout
	}

	// Diagnostic override: the explicit option wins, then the environment
	// signal, read exactly once per acquisition.
	override := opts.ForceTier
	if override == "" {
		if env := os.Getenv(ForceEnv); env != "" {
			override = env
			log.Info("operator override from environment",
				zap.String("env", ForceEnv), zap.String("value", env))
		}
	}

	var attempts []errors.Attempt

	switch override {
	case ForceFallback:
		mod, err := acquireLegacy(ctx, &opts, &attempts)
		if err != nil {
			return nil, errors.Exhausted(attempts)
		}
		return mod, nil

	case ForceVectorized, ForceNoSIMD:
		// Honored even if it may fail: an explicit operator decision is
		// not auto-negotiated and never falls back on its own.
		tier := clusterlights.TierNativeVectorized
		artifact := opts.resolve(ArtifactVectorized)
		if override == ForceNoSIMD {
			tier = clusterlights.TierNativeScalar
			artifact = opts.resolve(ArtifactScalar)
		}
		log.Info("operator override forces tier", zap.Stringer("tier", tier))
		mod, err := acquireNative(ctx, &opts, tier, artifact, &attempts)
		if err != nil {
			return nil, errors.Exhausted(attempts)
		}
		return mod, nil

	case "":
		// auto-negotiate below
	default:
		return nil, errors.InvalidInput(errors.PhaseResolve,
			fmt.Sprintf("unknown override %q (want %s, %s or %s)", override, ForceVectorized, ForceNoSIMD, ForceFallback))
	}

	var tier clusterlights.Tier
	var artifact string
	switch {
	case opts.ArtifactPath != "":
		// An explicit path bypasses tier negotiation, including the
		// capability probe; the tier label follows the preference.
		tier = clusterlights.TierNativeScalar
		if opts.PreferVectorized {
			tier = clusterlights.TierNativeVectorized
		}
		artifact = opts.ArtifactPath
	case opts.PreferVectorized && probe.Supported():
		tier = clusterlights.TierNativeVectorized
		artifact = opts.resolve(ArtifactVectorized)
	default:
		tier = clusterlights.TierNativeScalar
		artifact = opts.resolve(ArtifactScalar)
	}

	mod, err := acquireNative(ctx, &opts, tier, artifact, &attempts)
	if err == nil {
		return mod, nil
	}

	if opts.AllowFallback {
		log.Warn("native tier failed, degrading to legacy-emulated",
			zap.Stringer("tier", tier), zap.Error(err))
		if mod, err := acquireLegacy(ctx, &opts, &attempts); err == nil {
			return mod, nil
		}
	}

	return nil, errors.Exhausted(attempts)
}

// acquireNative tries the load strategies for one native tier, in order,
// each recoverable: a strategy failure advances to the next strategy of the
// same tier, never to a different tier.
func acquireNative(ctx context.Context, opts *Options, tier clusterlights.Tier, artifact string, attempts *[]errors.Attempt) (*clusterlights.LoadedModule, error) {
	log := opts.logger()
	rt := wazero.NewRuntime(ctx)

	compiled, err := streamingCompile(ctx, rt, opts, artifact)
	if err != nil {
		*attempts = append(*attempts, errors.Attempt{
			Tier: tier.String(), Strategy: strategyStreaming, Artifact: artifact, Err: err,
		})
		log.Debug("streaming strategy failed", zap.String("artifact", artifact), zap.Error(err))

		compiled, err = bufferedCompile(ctx, rt, opts, artifact)
		if err != nil {
			*attempts = append(*attempts, errors.Attempt{
				Tier: tier.String(), Strategy: strategyBuffered, Artifact: artifact, Err: err,
			})
			log.Debug("buffered strategy failed", zap.String("artifact", artifact), zap.Error(err))
			_ = rt.Close(ctx)
			return nil, err
		}
	}

	inst, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("cluster-lights"))
	if err != nil {
		wrapped := errors.Instantiation(errors.PhaseTransport, err)
		*attempts = append(*attempts, errors.Attempt{Tier: tier.String(), Artifact: artifact, Err: wrapped})
		_ = rt.Close(ctx)
		return nil, wrapped
	}

	log.Info("acquired compute module",
		zap.Stringer("tier", tier), zap.String("artifact", artifact))
	return clusterlights.NewLoadedModule(
		shim.Native(inst),
		shim.WrapMemory(inst.Memory()),
		tier,
		rt.Close,
	), nil
}
