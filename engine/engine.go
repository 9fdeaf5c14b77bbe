package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

// Config carries the construction parameters for the engine façade.
// Zero values fall back to the documented defaults.
type Config struct {
	// Near and Far bound the view depth range handed to the compute
	// module. Defaults: 0.1 and 1000.
	Near float32
	Far  float32

	// SubdivX/Y/Z are the cluster grid subdivision counts, threaded
	// through unchanged to the rendering integration. Defaults: 16, 9, 24.
	SubdivX int
	SubdivY int
	SubdivZ int

	// Performance prefers the compute module's fast-path registration for
	// unanimated lights.
	Performance bool

	// MaxLights sizes the module's light pools. Default: 1024.
	MaxLights int

	// MaxTileSpan is the initial cost/quality bound. Default: 16.
	MaxTileSpan int
}

func (c *Config) applyDefaults() {
	if c.Near <= 0 {
		c.Near = 0.1
	}
	if c.Far <= 0 {
		c.Far = 1000
	}
	if c.SubdivX <= 0 {
		c.SubdivX = 16
	}
	if c.SubdivY <= 0 {
		c.SubdivY = 9
	}
	if c.SubdivZ <= 0 {
		c.SubdivZ = 24
	}
	if c.MaxLights <= 0 {
		c.MaxLights = 1024
	}
	if c.MaxTileSpan <= 0 {
		c.MaxTileSpan = 16
	}
}

// Engine is the long-lived façade over a loaded compute module. It owns the
// module handle, the tile-span knob the adaptive controller tunes, and the
// light registry expressed as thin calls over the uniform call surface.
// One frame-driving owner; not safe for concurrent use.
type Engine struct {
	mod  *clusterlights.LoadedModule
	cfg  Config
	span int
}

// New constructs the façade and initializes the compute module's light
// pools and view frustum.
func New(ctx context.Context, mod *clusterlights.LoadedModule, cfg Config) (*Engine, error) {
	cfg.applyDefaults()
	e := &Engine{mod: mod, cfg: cfg, span: cfg.MaxTileSpan}

	if _, err := e.call(ctx, "init", uint64(uint32(cfg.MaxLights))); err != nil {
		return nil, err
	}
	if _, err := e.call(ctx, "setViewFrustum", f32(cfg.Near), f32(cfg.Far)); err != nil {
		return nil, err
	}

	Logger().Info("engine initialized",
		zap.Stringer("tier", mod.Tier()),
		zap.Int("maxLights", cfg.MaxLights),
		zap.Int("maxTileSpan", cfg.MaxTileSpan))
	return e, nil
}

// Module exposes the owned module handle for the rendering integration.
func (e *Engine) Module() *clusterlights.LoadedModule { return e.mod }

// Config returns the construction parameters after default resolution.
func (e *Engine) Config() Config { return e.cfg }

// MaxTileSpan returns the current cost/quality bound: the maximum
// screen-space region breadth one light's clustering assignment may cover.
func (e *Engine) MaxTileSpan() int { return e.span }

// SetMaxTileSpan sets the cost/quality bound. Any value is accepted; the
// adaptive controller clamps before writing. Cheap synchronous write.
func (e *Engine) SetMaxTileSpan(n int) {
	if n == e.span {
		return
	}
	Logger().Debug("tile span adjusted", zap.Int("from", e.span), zap.Int("to", n))
	e.span = n
}

// Update advances light animation and view-space state for scene time t
// (seconds). Reports whether any animated light moved this frame.
func (e *Engine) Update(ctx context.Context, t float32) (bool, error) {
	results, err := e.call(ctx, "update", f32(t))
	if err != nil {
		return false, err
	}
	return len(results) > 0 && int32(results[0]) != 0, nil
}

// Sort re-orders the module's light pools for cache-coherent clustering.
func (e *Engine) Sort(ctx context.Context) error {
	_, err := e.call(ctx, "sort")
	return err
}

// SetCameraMatrix writes the column-major view matrix into the module's
// linear memory at the location the module designates.
func (e *Engine) SetCameraMatrix(ctx context.Context, m [16]float32) error {
	results, err := e.call(ctx, "getCameraMatrix")
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.InvalidInput(errors.PhaseEngine, "getCameraMatrix returned no pointer")
	}
	base := uint32(results[0])
	mem := e.mod.Memory()
	for i, v := range m {
		if err := mem.WriteF32(base+uint32(i)*4, v); err != nil {
			return err
		}
	}
	return nil
}

// SetLODBias scales the module's level-of-detail distance thresholds.
func (e *Engine) SetLODBias(ctx context.Context, bias float32) error {
	_, err := e.call(ctx, "setLODBias", f32(bias))
	return err
}

// LODBias reads back the current level-of-detail bias.
func (e *Engine) LODBias(ctx context.Context) (float32, error) {
	results, err := e.call(ctx, "getLODBias")
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEngine, "getLODBias returned no result")
	}
	return api.DecodeF32(results[0]), nil
}

// Close releases the module's pools and the module itself.
func (e *Engine) Close(ctx context.Context) error {
	// cleanup may be absent on a partially featured tier; the module
	// still must be closed.
	if fn := e.mod.Surface().Lookup("cleanup"); fn != nil {
		if _, err := fn.Call(ctx); err != nil {
			Logger().Warn("module cleanup failed", zap.Error(err))
		}
	}
	return e.mod.Close(ctx)
}

// call resolves and invokes one operation of the call surface. Absence is
// reported as "not supported by this tier".
func (e *Engine) call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := e.mod.Surface().Lookup(name)
	if fn == nil {
		return nil, errors.NotSupported(errors.PhaseEngine, name, e.mod.Tier().String())
	}
	return fn.Call(ctx, args...)
}

func f32(v float32) uint64 { return api.EncodeF32(v) }
