package control

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// sampleInterval is the fixed cadence at which instantaneous FPS samples
// are taken from the accumulated frame count.
const sampleInterval = 100 * time.Millisecond

// SpanTuner is the slice of the engine façade the controller drives: the
// tile-span cost/quality bound. Satisfied by *engine.Engine.
type SpanTuner interface {
	MaxTileSpan() int
	SetMaxTileSpan(int)
}

// Config holds the controller's tuning parameters. Zero values fall back
// to the documented defaults.
type Config struct {
	// TargetFPS is the frame rate the controller tracks. Default: 60.
	TargetFPS float64

	// MinSpan and MaxSpan bound the tile-span knob. Defaults: 1 and 48.
	MinSpan int
	MaxSpan int

	// AdjustmentRate scales the step size per adjustment. The controller
	// shrinks by ceil(rate*2) and grows by ceil(rate): a perceptible
	// frame-rate drop is worse than a small unused quality margin.
	// Default: 0.5.
	AdjustmentRate float64

	// UpdateInterval is the adjustment cadence. Default: 500ms.
	UpdateInterval time.Duration

	// LowMargin and HighMargin bound the dead band around the target as
	// ratios of mean FPS to target. Defaults: 0.9 and 1.1.
	LowMargin  float64
	HighMargin float64

	// WindowSize is the FPS sample ring capacity. Default: 10.
	WindowSize int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		TargetFPS:      60,
		MinSpan:        1,
		MaxSpan:        48,
		AdjustmentRate: 0.5,
		UpdateInterval: 500 * time.Millisecond,
		LowMargin:      0.9,
		HighMargin:     1.1,
		WindowSize:     10,
	}
}

func (c *Config) applyDefaults() {
	if c.TargetFPS <= 0 {
		c.TargetFPS = 60
	}
	if c.MinSpan <= 0 {
		c.MinSpan = 1
	}
	if c.MaxSpan <= 0 {
		c.MaxSpan = 48
	}
	if c.AdjustmentRate <= 0 {
		c.AdjustmentRate = 0.5
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = 500 * time.Millisecond
	}
	if c.LowMargin <= 0 {
		c.LowMargin = 0.9
	}
	if c.HighMargin <= 0 {
		c.HighMargin = 1.1
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 10
	}
}

// Controller is the closed-loop tuner: it samples achieved frame rate on a
// fixed cadence and, on a slower cadence, nudges the engine's tile-span
// bound toward the target frame rate. It never blocks and never fails;
// every internal edge case is absorbed as a no-op. One owner per
// frame-driving loop; not safe for concurrent use.
type Controller struct {
	tuner      SpanTuner
	cfg        Config
	now        func() time.Time
	window     []float64
	head       int
	count      int
	frames     int
	currentFPS float64
	lastSample time.Time
	lastAdjust time.Time
	enabled    bool
}

// New binds a controller to one engine façade.
func New(tuner SpanTuner, cfg Config) *Controller {
	return newWithClock(tuner, cfg, time.Now)
}

func newWithClock(tuner SpanTuner, cfg Config, now func() time.Time) *Controller {
	cfg.applyDefaults()
	c := &Controller{
		tuner:   tuner,
		cfg:     cfg,
		now:     now,
		window:  make([]float64, cfg.WindowSize),
		enabled: true,
	}
	t := now()
	c.lastSample = t
	c.lastAdjust = t
	return c
}

// Step advances the control loop by one rendered frame. frameTime is the
// elapsed time of the frame just rendered. Two independent cadences gate
// the work: sampling (fixed) and adjustment (configurable).
func (c *Controller) Step(frameTime time.Duration) {
	if !c.enabled {
		return
	}

	if frameTime > 0 {
		c.currentFPS = float64(time.Second) / float64(frameTime)
	}
	c.frames++

	now := c.now()
	if since := now.Sub(c.lastSample); since >= sampleInterval {
		c.push(float64(c.frames) / since.Seconds())
		c.frames = 0
		c.lastSample = now
	}

	if now.Sub(c.lastAdjust) < c.cfg.UpdateInterval {
		return
	}
	c.lastAdjust = now

	// No samples yet: skip the adjustment entirely rather than divide by
	// zero or act on nothing.
	if c.count == 0 {
		return
	}

	ratio := c.mean() / c.cfg.TargetFPS
	span := c.tuner.MaxTileSpan()
	next := span
	switch {
	case ratio < c.cfg.LowMargin:
		next = span - int(math.Ceil(c.cfg.AdjustmentRate*2))
		if next < c.cfg.MinSpan {
			next = c.cfg.MinSpan
		}
	case ratio > c.cfg.HighMargin:
		next = span + int(math.Ceil(c.cfg.AdjustmentRate))
		if next > c.cfg.MaxSpan {
			next = c.cfg.MaxSpan
		}
	}

	if next == span {
		// Dead band, or already pinned at a bound.
		return
	}
	Logger().Debug("tile span adjustment",
		zap.Float64("meanFPS", ratio*c.cfg.TargetFPS),
		zap.Float64("targetFPS", c.cfg.TargetFPS),
		zap.Int("from", span),
		zap.Int("to", next))
	c.tuner.SetMaxTileSpan(next)
}

// SetEnabled toggles the loop. Disabling makes Step a no-op; the sample
// window and timers are preserved, not cleared.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Enabled reports whether the loop is active.
func (c *Controller) Enabled() bool { return c.enabled }

// SetTargetFPS updates the tracked frame rate. Takes effect on the next
// adjustment evaluation; no immediate re-adjustment is triggered.
func (c *Controller) SetTargetFPS(fps float64) {
	if fps > 0 {
		c.cfg.TargetFPS = fps
	}
}

// Reset clears the sample window and re-arms both cadence timers. Call on
// scene changes so stale samples never influence the new scene's first
// adjustment.
func (c *Controller) Reset() {
	c.head = 0
	c.count = 0
	c.frames = 0
	c.currentFPS = 0
	t := c.now()
	c.lastSample = t
	c.lastAdjust = t
}

// Stats is a read-only snapshot of the controller and its knob.
type Stats struct {
	CurrentFPS float64
	AverageFPS float64
	TargetFPS  float64
	Span       int
	MinSpan    int
	MaxSpan    int
}

// Stats returns the current snapshot without mutating controller state.
func (c *Controller) Stats() Stats {
	avg := 0.0
	if c.count > 0 {
		avg = c.mean()
	}
	return Stats{
		CurrentFPS: c.currentFPS,
		AverageFPS: avg,
		TargetFPS:  c.cfg.TargetFPS,
		Span:       c.tuner.MaxTileSpan(),
		MinSpan:    c.cfg.MinSpan,
		MaxSpan:    c.cfg.MaxSpan,
	}
}

// push appends a sample, evicting the oldest beyond capacity.
func (c *Controller) push(fps float64) {
	c.window[c.head] = fps
	c.head = (c.head + 1) % len(c.window)
	if c.count < len(c.window) {
		c.count++
	}
}

func (c *Controller) mean() float64 {
	sum := 0.0
	for i := 0; i < c.count; i++ {
		sum += c.window[i]
	}
	return sum / float64(c.count)
}
