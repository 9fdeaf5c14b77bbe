package probe

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

var (
	supportedOnce sync.Once
	supported     bool
)

// Supported reports whether this host accepts the vectorized instruction
// tier. It never fails: a validator error or panic is absorbed and reported
// as unsupported. The result is a process-lifetime snapshot; repeated calls
// return the cached answer.
func Supported() bool {
	supportedOnce.Do(func() {
		cfg := wazero.NewRuntimeConfig().WithCoreFeatures(api.CoreFeaturesV2)
		supported = SupportedWith(context.Background(), cfg)
	})
	return supported
}

// SupportedWith probes using an explicit runtime configuration. Exposed so
// callers and tests can pin the feature set instead of depending on host
// defaults.
func SupportedWith(ctx context.Context, cfg wazero.RuntimeConfig) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			// Fail-safe, not fail-loud: a probing failure must never
			// abort startup.
			Logger().Warn("capability probe inconclusive",
				zap.Error(errors.Inconclusive(fmt.Errorf("validator panic: %v", r))))
			ok = false
		}
	}()

	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, Fragment())
	if err != nil {
		Logger().Debug("vectorized tier unsupported", zap.Error(err))
		return false
	}
	_ = compiled.Close(ctx)
	return true
}
