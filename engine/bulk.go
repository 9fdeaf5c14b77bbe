package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

// Packed bulk-registration strides, in bytes per light: x/y/z/radius and
// r/g/b/intensity vectors, one decay scalar, one flag word, and the shared
// animation parameter block (circular 2, wave 6, flicker 3, pulse 3 floats).
const (
	bulkVecStride   = 16
	bulkDecayStride = 4
	bulkFlagStride  = 4
	bulkAnimStride  = 14 * 4
)

// Offsets of the circular block inside one packed animation record.
const (
	animOffCircularSpeed  = 0
	animOffCircularRadius = 4
)

// BulkAddPointLights registers many point lights in one call over the call
// surface: the per-light arrays are packed into the module's linear memory
// and handed to the module as pointers, so registration cost does not scale
// with per-operation call overhead. Lights with a non-zero AnimSpeed carry
// the circular animation block, as in AddPointLight. Returns the number of
// lights actually registered, which the module clamps to remaining pool
// capacity.
func (e *Engine) BulkAddPointLights(ctx context.Context, lights []PointLight) (int, error) {
	if len(lights) == 0 {
		return 0, nil
	}
	n := uint32(len(lights))

	posBytes := n * bulkVecStride
	colBytes := n * bulkVecStride
	decayBytes := n * bulkDecayStride
	flagBytes := n * bulkFlagStride
	animBytes := n * bulkAnimStride

	base, err := e.alloc(ctx, posBytes+colBytes+decayBytes+flagBytes+animBytes)
	if err != nil {
		return 0, err
	}
	defer e.release(ctx, base)

	pos := base
	col := pos + posBytes
	dec := col + colBytes
	flg := dec + decayBytes
	anm := flg + flagBytes

	mem := e.mod.Memory()
	for i, l := range lights {
		if l.Decay == 0 {
			l.Decay = 1
		}
		o := uint32(i) * bulkVecStride
		for j, v := range [4]float32{l.X, l.Y, l.Z, l.Radius} {
			if err := mem.WriteF32(pos+o+uint32(j)*4, v); err != nil {
				return 0, err
			}
		}
		for j, v := range [4]float32{l.R, l.G, l.B, l.Intensity} {
			if err := mem.WriteF32(col+o+uint32(j)*4, v); err != nil {
				return 0, err
			}
		}
		if err := mem.WriteF32(dec+uint32(i)*bulkDecayStride, l.Decay); err != nil {
			return 0, err
		}

		flags := AnimNone
		if l.AnimSpeed != 0 {
			flags = AnimCircular
			a := anm + uint32(i)*bulkAnimStride
			if err := mem.WriteF32(a+animOffCircularSpeed, l.AnimSpeed); err != nil {
				return 0, err
			}
			if err := mem.WriteF32(a+animOffCircularRadius, l.AnimRadius); err != nil {
				return 0, err
			}
		}
		if err := mem.WriteU32(flg+uint32(i)*bulkFlagStride, uint32(flags)); err != nil {
			return 0, err
		}
	}

	results, err := e.call(ctx, "bulkAddPointLights",
		uint64(n), uint64(pos), uint64(col), uint64(dec), uint64(flg), uint64(anm))
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEngine, "bulkAddPointLights returned no count")
	}
	added := int(int32(results[0]))
	if added < len(lights) {
		Logger().Warn("bulk registration clamped to pool capacity",
			zap.Int("requested", len(lights)), zap.Int("added", added))
	}
	return added, nil
}

// alloc reserves a scratch block inside the module's linear memory through
// its exported allocator. A tier built without an allocator cannot serve
// the bulk path.
func (e *Engine) alloc(ctx context.Context, size uint32) (uint32, error) {
	results, err := e.call(ctx, "malloc", uint64(size))
	if err != nil {
		return 0, err
	}
	if len(results) == 0 || uint32(results[0]) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEngine, "allocator returned null")
	}
	return uint32(results[0]), nil
}

// release returns a scratch block to the module's allocator. Best effort:
// a failed free leaks module-side scratch, never host state.
func (e *Engine) release(ctx context.Context, ptr uint32) {
	fn := e.mod.Surface().Lookup("free")
	if fn == nil {
		return
	}
	if _, err := fn.Call(ctx, uint64(ptr)); err != nil {
		Logger().Warn("scratch release failed", zap.Error(err))
	}
}
