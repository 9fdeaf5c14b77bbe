package engine

import "context"

// AnimFlag selects which animation behaviors a light carries. Flags
// combine; each set flag reads its own parameter block.
type AnimFlag uint32

const (
	AnimNone     AnimFlag = 0x00
	AnimCircular AnimFlag = 0x01 // orbit around the base position
	AnimLinear   AnimFlag = 0x02 // move toward a target position
	AnimWave     AnimFlag = 0x04 // oscillate along an axis
	AnimFlicker  AnimFlag = 0x08 // noise-driven intensity jitter
	AnimPulse    AnimFlag = 0x10 // periodic intensity/radius swell
	AnimRotate   AnimFlag = 0x20 // spin direction/normal around an axis
)

// AnimationParams carries every animation parameter block. Only the blocks
// selected by Flags are read; the rest are ignored by the compute module.
// Rotation applies to spot and area lights only.
type AnimationParams struct {
	Flags AnimFlag

	// Circular orbit.
	CircularSpeed  float32
	CircularRadius float32

	// Linear travel toward a target.
	TargetX, TargetY, TargetZ float32
	Duration                  float32
	Delay                     float32
	LinearMode                uint8

	// Wave oscillation. The axis is normalized by the compute module.
	WaveAxisX, WaveAxisY, WaveAxisZ float32
	WaveSpeed                       float32
	WaveAmplitude                   float32
	WavePhase                       float32

	// Flicker jitter.
	FlickerSpeed     float32
	FlickerIntensity float32
	FlickerSeed      float32

	// Pulse swell.
	PulseSpeed  float32
	PulseAmount float32
	PulseTarget uint8

	// Rotation. The axis is normalized by the compute module.
	RotAxisX, RotAxisY, RotAxisZ float32
	RotSpeed                     float32
	RotAngle                     float32
	RotMode                      uint8
}

func (a *AnimationParams) circularArgs() []uint64 {
	return []uint64{f32(a.CircularSpeed), f32(a.CircularRadius)}
}

func (a *AnimationParams) linearArgs() []uint64 {
	return []uint64{
		f32(a.TargetX), f32(a.TargetY), f32(a.TargetZ),
		f32(a.Duration), f32(a.Delay), uint64(a.LinearMode),
	}
}

func (a *AnimationParams) waveArgs() []uint64 {
	return []uint64{
		f32(a.WaveAxisX), f32(a.WaveAxisY), f32(a.WaveAxisZ),
		f32(a.WaveSpeed), f32(a.WaveAmplitude), f32(a.WavePhase),
	}
}

func (a *AnimationParams) flickerArgs() []uint64 {
	return []uint64{f32(a.FlickerSpeed), f32(a.FlickerIntensity), f32(a.FlickerSeed)}
}

func (a *AnimationParams) pulseArgs() []uint64 {
	return []uint64{f32(a.PulseSpeed), f32(a.PulseAmount), uint64(a.PulseTarget)}
}

func (a *AnimationParams) rotationArgs() []uint64 {
	return []uint64{
		f32(a.RotAxisX), f32(a.RotAxisY), f32(a.RotAxisZ),
		f32(a.RotSpeed), f32(a.RotAngle), uint64(a.RotMode),
	}
}

// AddAnimatedPointLight registers a point light with the full animation
// parameter set and returns its registry index. Point lights support the
// circular, linear, wave, flicker and pulse blocks.
func (e *Engine) AddAnimatedPointLight(ctx context.Context, l PointLight, anim AnimationParams) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	args := make([]uint64, 0, 30)
	args = append(args,
		f32(l.X), f32(l.Y), f32(l.Z), f32(l.Radius),
		f32(l.R), f32(l.G), f32(l.B), f32(l.Intensity), f32(l.Decay),
		uint64(anim.Flags))
	args = append(args, anim.circularArgs()...)
	args = append(args, anim.linearArgs()...)
	args = append(args, anim.waveArgs()...)
	args = append(args, anim.flickerArgs()...)
	args = append(args, anim.pulseArgs()...)
	results, err := e.call(ctx, "addPointWithAnimation", args...)
	return registryIndex(results, err)
}

// AddAnimatedSpotLight registers a spot light with the full animation
// parameter set. Spot lights support the linear, rotation, flicker and
// pulse blocks.
func (e *Engine) AddAnimatedSpotLight(ctx context.Context, l SpotLight, anim AnimationParams) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	args := make([]uint64, 0, 33)
	args = append(args,
		f32(l.X), f32(l.Y), f32(l.Z), f32(l.Radius),
		f32(l.R), f32(l.G), f32(l.B),
		f32(l.DirX), f32(l.DirY), f32(l.DirZ),
		f32(l.Angle), f32(l.Penumbra),
		f32(l.Decay), f32(l.Intensity),
		uint64(anim.Flags))
	args = append(args, anim.linearArgs()...)
	args = append(args, anim.rotationArgs()...)
	args = append(args, anim.flickerArgs()...)
	args = append(args, anim.pulseArgs()...)
	results, err := e.call(ctx, "addSpotWithAnimation", args...)
	return registryIndex(results, err)
}

// AddAnimatedRectLight registers an area light with the full animation
// parameter set. Area lights support the linear, rotation, flicker and
// pulse blocks.
func (e *Engine) AddAnimatedRectLight(ctx context.Context, l RectLight, anim AnimationParams) (int, error) {
	if l.Decay == 0 {
		l.Decay = 1
	}
	args := make([]uint64, 0, 33)
	args = append(args,
		f32(l.X), f32(l.Y), f32(l.Z),
		f32(l.Width), f32(l.Height),
		f32(l.NX), f32(l.NY), f32(l.NZ),
		f32(l.R), f32(l.G), f32(l.B),
		f32(l.Intensity), f32(l.Decay), f32(l.Radius),
		uint64(anim.Flags))
	args = append(args, anim.linearArgs()...)
	args = append(args, anim.rotationArgs()...)
	args = append(args, anim.flickerArgs()...)
	args = append(args, anim.pulseArgs()...)
	results, err := e.call(ctx, "addRectWithAnimation", args...)
	return registryIndex(results, err)
}

// UpdatePointLightAnimation replaces a registered point light's animation
// parameter set.
func (e *Engine) UpdatePointLightAnimation(ctx context.Context, idx int, anim AnimationParams) error {
	args := make([]uint64, 0, 22)
	args = append(args, uint64(uint32(idx)), uint64(anim.Flags))
	args = append(args, anim.circularArgs()...)
	args = append(args, anim.linearArgs()...)
	args = append(args, anim.waveArgs()...)
	args = append(args, anim.flickerArgs()...)
	args = append(args, anim.pulseArgs()...)
	_, err := e.call(ctx, "updatePointLightAnimation", args...)
	return err
}

// UpdateSpotLightAnimation replaces a registered spot light's animation
// parameter set, rotation block included.
func (e *Engine) UpdateSpotLightAnimation(ctx context.Context, idx int, anim AnimationParams) error {
	_, err := e.call(ctx, "updateSpotLightAnimation", updateAnimArgs(idx, &anim)...)
	return err
}

// UpdateRectLightAnimation replaces a registered area light's animation
// parameter set, rotation block included.
func (e *Engine) UpdateRectLightAnimation(ctx context.Context, idx int, anim AnimationParams) error {
	_, err := e.call(ctx, "updateRectLightAnimation", updateAnimArgs(idx, &anim)...)
	return err
}

// updateAnimArgs assembles the spot/rect animation update argument list:
// the point-light layout plus the trailing rotation block.
func updateAnimArgs(idx int, anim *AnimationParams) []uint64 {
	args := make([]uint64, 0, 28)
	args = append(args, uint64(uint32(idx)), uint64(anim.Flags))
	args = append(args, anim.circularArgs()...)
	args = append(args, anim.linearArgs()...)
	args = append(args, anim.waveArgs()...)
	args = append(args, anim.flickerArgs()...)
	args = append(args, anim.pulseArgs()...)
	args = append(args, anim.rotationArgs()...)
	return args
}
