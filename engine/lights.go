package engine

import (
	"context"

	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

// PointLight is a point light registration. AnimSpeed non-zero attaches a
// circular animation of radius AnimRadius, matching the compact add path of
// the compute module.
type PointLight struct {
	X, Y, Z    float32
	Radius     float32
	R, G, B    float32
	Intensity  float32
	Decay      float32
	AnimSpeed  float32
	AnimRadius float32
}

// SpotLight is a spot light registration. Direction is normalized by the
// compute module.
type SpotLight struct {
	X, Y, Z          float32
	Radius           float32
	R, G, B          float32
	DirX, DirY, DirZ float32
	Angle            float32
	Penumbra         float32
	Decay            float32
	Intensity        float32
}

// RectLight is an area light registration. Normal is normalized by the
// compute module.
type RectLight struct {
	X, Y, Z       float32
	Width, Height float32
	NX, NY, NZ    float32
	R, G, B       float32
	Intensity     float32
	Decay         float32
	Radius        float32
}

// AddPointLight registers a point light and returns its registry index.
// In performance mode unanimated lights take the module's fast path, which
// pins decay to 1.
func (e *Engine) AddPointLight(ctx context.Context, l PointLight) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	var results []uint64
	var err error
	if e.cfg.Performance && l.AnimSpeed == 0 {
		results, err = e.call(ctx, "addFast",
			f32(l.X), f32(l.Y), f32(l.Z), f32(l.Radius),
			f32(l.R), f32(l.G), f32(l.B), f32(l.Intensity))
	} else {
		results, err = e.call(ctx, "add",
			f32(l.X), f32(l.Y), f32(l.Z), f32(l.Radius),
			f32(l.R), f32(l.G), f32(l.B),
			f32(l.Decay), f32(l.AnimSpeed), f32(l.AnimRadius), f32(l.Intensity))
	}
	return registryIndex(results, err)
}

// AddSpotLight registers a spot light and returns its registry index.
func (e *Engine) AddSpotLight(ctx context.Context, l SpotLight) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	results, err := e.call(ctx, "addSpot",
		f32(l.X), f32(l.Y), f32(l.Z), f32(l.Radius),
		f32(l.R), f32(l.G), f32(l.B),
		f32(l.DirX), f32(l.DirY), f32(l.DirZ),
		f32(l.Angle), f32(l.Penumbra),
		f32(l.Decay), f32(l.Intensity))
	return registryIndex(results, err)
}

// AddRectLight registers an area light and returns its registry index.
func (e *Engine) AddRectLight(ctx context.Context, l RectLight) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	results, err := e.call(ctx, "addRect",
		f32(l.X), f32(l.Y), f32(l.Z),
		f32(l.Width), f32(l.Height),
		f32(l.NX), f32(l.NY), f32(l.NZ),
		f32(l.R), f32(l.G), f32(l.B),
		f32(l.Intensity), f32(l.Decay), f32(l.Radius))
	return registryIndex(results, err)
}

func registryIndex(results []uint64, err error) (int, error) {
	if err != nil {
		return -1, err
	}
	if len(results) == 0 {
		return -1, errors.InvalidInput(errors.PhaseEngine, "add returned no index")
	}
	idx := int(int32(results[0]))
	if idx < 0 {
		return -1, errors.InvalidInput(errors.PhaseEngine, "light registry full")
	}
	return idx, nil
}

// RemovePointLight removes the point light at idx (swap-with-last).
func (e *Engine) RemovePointLight(ctx context.Context, idx int) error {
	_, err := e.call(ctx, "removePointLight", uint64(uint32(idx)))
	return err
}

// RemoveSpotLight removes the spot light at idx.
func (e *Engine) RemoveSpotLight(ctx context.Context, idx int) error {
	_, err := e.call(ctx, "removeSpotLight", uint64(uint32(idx)))
	return err
}

// RemoveRectLight removes the area light at idx.
func (e *Engine) RemoveRectLight(ctx context.Context, idx int) error {
	_, err := e.call(ctx, "removeRectLight", uint64(uint32(idx)))
	return err
}

// ResetLights empties every light pool.
func (e *Engine) ResetLights(ctx context.Context) error {
	_, err := e.call(ctx, "reset")
	return err
}

// UpdatePointLightPosition moves a registered point light.
func (e *Engine) UpdatePointLightPosition(ctx context.Context, idx int, x, y, z float32) error {
	_, err := e.call(ctx, "updatePointLightPosition", uint64(uint32(idx)), f32(x), f32(y), f32(z))
	return err
}

// UpdatePointLightColor recolors a registered point light.
func (e *Engine) UpdatePointLightColor(ctx context.Context, idx int, r, g, b float32) error {
	_, err := e.call(ctx, "updatePointLightColor", uint64(uint32(idx)), f32(r), f32(g), f32(b))
	return err
}

// UpdatePointLightIntensity rescales a registered point light.
func (e *Engine) UpdatePointLightIntensity(ctx context.Context, idx int, intensity float32) error {
	_, err := e.call(ctx, "updatePointLightIntensity", uint64(uint32(idx)), f32(intensity))
	return err
}

// UpdatePointLightRadius resizes a registered point light.
func (e *Engine) UpdatePointLightRadius(ctx context.Context, idx int, radius float32) error {
	_, err := e.call(ctx, "updatePointLightRadius", uint64(uint32(idx)), f32(radius))
	return err
}

// UpdateSpotLightDirection re-aims a registered spot light.
func (e *Engine) UpdateSpotLightDirection(ctx context.Context, idx int, dx, dy, dz float32) error {
	_, err := e.call(ctx, "updateSpotLightDirection", uint64(uint32(idx)), f32(dx), f32(dy), f32(dz))
	return err
}

// UpdateSpotLightAngle reshapes a registered spot light's cone.
func (e *Engine) UpdateSpotLightAngle(ctx context.Context, idx int, angle, penumbra float32) error {
	_, err := e.call(ctx, "updateSpotLightAngle", uint64(uint32(idx)), f32(angle), f32(penumbra))
	return err
}

// UpdateRectLightSize resizes a registered area light.
func (e *Engine) UpdateRectLightSize(ctx context.Context, idx int, width, height float32) error {
	_, err := e.call(ctx, "updateRectLightSize", uint64(uint32(idx)), f32(width), f32(height))
	return err
}

// PointLightCount returns the number of registered point lights.
func (e *Engine) PointLightCount(ctx context.Context) (int, error) {
	return e.countOf(ctx, "getPointLightCount")
}

// SpotLightCount returns the number of registered spot lights.
func (e *Engine) SpotLightCount(ctx context.Context) (int, error) {
	return e.countOf(ctx, "getSpotLightCount")
}

// RectLightCount returns the number of registered area lights.
func (e *Engine) RectLightCount(ctx context.Context) (int, error) {
	return e.countOf(ctx, "getRectLightCount")
}

func (e *Engine) countOf(ctx context.Context, op string) (int, error) {
	results, err := e.call(ctx, op)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEngine, op+" returned no result")
	}
	return int(int32(results[0])), nil
}

// PointLightTexturePtr returns the linear-memory offset of the packed point
// light data the renderer samples. Valid for the module's lifetime.
func (e *Engine) PointLightTexturePtr(ctx context.Context) (uint32, error) {
	return e.ptrOf(ctx, "getPointLightTexture")
}

// SpotLightTexturePtr returns the offset of the packed spot light data.
func (e *Engine) SpotLightTexturePtr(ctx context.Context) (uint32, error) {
	return e.ptrOf(ctx, "getSpotLightTexture")
}

// RectLightTexturePtr returns the offset of the packed area light data.
func (e *Engine) RectLightTexturePtr(ctx context.Context) (uint32, error) {
	return e.ptrOf(ctx, "getRectLightTexture")
}

func (e *Engine) ptrOf(ctx context.Context, op string) (uint32, error) {
	results, err := e.call(ctx, op)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEngine, op+" returned no pointer")
	}
	return uint32(results[0]), nil
}
