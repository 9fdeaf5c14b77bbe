package control

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1000, 0)} }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

// spyTuner records every write so tests can assert both values and
// write counts.
type spyTuner struct {
	span int
	sets []int
}

func (s *spyTuner) MaxTileSpan() int { return s.span }

func (s *spyTuner) SetMaxTileSpan(n int) {
	s.span = n
	s.sets = append(s.sets, n)
}

// drive renders d worth of frames at a steady fps, advancing the fake
// clock by one frame time per Step.
func drive(c *Controller, clk *fakeClock, fps float64, d time.Duration) {
	frame := time.Duration(float64(time.Second) / fps)
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		clk.advance(frame)
		c.Step(frame)
	}
}

func testConfig(target float64) Config {
	cfg := DefaultConfig()
	cfg.TargetFPS = target
	return cfg
}

func newTestController(target float64, span int) (*Controller, *spyTuner, *fakeClock) {
	clk := newFakeClock()
	tuner := &spyTuner{span: span}
	return newWithClock(tuner, testConfig(target), clk.now), tuner, clk
}

func TestStep_ShrinksSpanWhenBelowTarget(t *testing.T) {
	c, tuner, clk := newTestController(90, 16)

	// 70 FPS against a target of 90: ratio 0.78, below the 0.9 margin.
	// One adjustment cycle shrinks the span by ceil(0.5*2) = 1.
	drive(c, clk, 70, 600*time.Millisecond)

	if len(tuner.sets) != 1 || tuner.sets[0] != 15 {
		t.Fatalf("sets = %v, want [15]", tuner.sets)
	}
}

func TestStep_GrowsSpanWhenAboveTarget(t *testing.T) {
	c, tuner, clk := newTestController(90, 16)

	// 100 FPS against 90: ratio 1.11, above the 1.1 margin. One cycle
	// grows the span by ceil(0.5) = 1.
	drive(c, clk, 100, 600*time.Millisecond)

	if len(tuner.sets) != 1 || tuner.sets[0] != 17 {
		t.Fatalf("sets = %v, want [17]", tuner.sets)
	}
}

func TestStep_DeadBandHoldsSpan(t *testing.T) {
	c, tuner, clk := newTestController(60, 16)

	drive(c, clk, 60, 3*time.Second)

	if len(tuner.sets) != 0 {
		t.Fatalf("on-target frame rate must not move the span, got %v", tuner.sets)
	}
}

func TestStep_ClampsToMinSpan(t *testing.T) {
	c, tuner, clk := newTestController(90, 8)

	drive(c, clk, 30, 10*time.Second)

	want := 7
	for _, s := range tuner.sets {
		if s != want {
			t.Fatalf("sets = %v, want strict descent to MinSpan", tuner.sets)
		}
		want--
	}
	if tuner.span != 1 {
		t.Fatalf("span = %d, want pinned at 1", tuner.span)
	}
	// Pinned at the floor: further slow cycles must not write again.
	if len(tuner.sets) != 7 {
		t.Fatalf("writes after reaching MinSpan: %v", tuner.sets)
	}
}

func TestStep_ClampsToMaxSpan(t *testing.T) {
	c, tuner, clk := newTestController(60, 45)

	drive(c, clk, 200, 5*time.Second)

	for _, s := range tuner.sets {
		if s > 48 {
			t.Fatalf("span exceeded MaxSpan: %v", tuner.sets)
		}
	}
	if tuner.span != 48 {
		t.Fatalf("span = %d, want pinned at 48", tuner.span)
	}
}

func TestStep_EmptyWindowSkipsAdjustment(t *testing.T) {
	clk := newFakeClock()
	tuner := &spyTuner{span: 16}
	cfg := testConfig(60)
	// Adjustment cadence shorter than the sample cadence: the first
	// adjustment boundary arrives before any sample exists.
	cfg.UpdateInterval = 50 * time.Millisecond
	c := newWithClock(tuner, cfg, clk.now)

	clk.advance(60 * time.Millisecond)
	c.Step(60 * time.Millisecond)

	if len(tuner.sets) != 0 {
		t.Fatalf("adjustment with empty window must be a no-op, got %v", tuner.sets)
	}
}

func TestStep_DisabledPreservesState(t *testing.T) {
	c, tuner, clk := newTestController(60, 16)

	drive(c, clk, 60, 300*time.Millisecond)
	before := c.Stats()

	c.SetEnabled(false)
	drive(c, clk, 20, 2*time.Second)

	if len(tuner.sets) != 0 {
		t.Fatalf("disabled controller wrote the span: %v", tuner.sets)
	}
	if got := c.Stats(); got != before {
		t.Fatalf("disabled Step mutated state: %+v != %+v", got, before)
	}

	c.SetEnabled(true)
	if !c.Enabled() {
		t.Fatal("re-enable failed")
	}
}

func TestReset_DropsStaleSamples(t *testing.T) {
	c, tuner, clk := newTestController(90, 16)

	// Fill the window with slow samples, then switch scenes.
	drive(c, clk, 40, 400*time.Millisecond)
	c.Reset()

	if s := c.Stats(); s.AverageFPS != 0 || s.CurrentFPS != 0 {
		t.Fatalf("window not cleared: %+v", s)
	}

	// The new scene holds the target. Stale 40 FPS samples would drag
	// the mean below the low margin and force a shrink.
	drive(c, clk, 90, 600*time.Millisecond)

	if len(tuner.sets) != 0 {
		t.Fatalf("stale samples influenced the first adjustment: %v", tuner.sets)
	}
	if avg := c.Stats().AverageFPS; avg < 89 || avg > 91 {
		t.Fatalf("AverageFPS = %v, want ~90", avg)
	}
}

func TestSetTargetFPS_AppliesOnNextCycle(t *testing.T) {
	c, tuner, clk := newTestController(60, 16)

	drive(c, clk, 60, 600*time.Millisecond)
	if len(tuner.sets) != 0 {
		t.Fatalf("on-target drive moved the span: %v", tuner.sets)
	}

	c.SetTargetFPS(120)
	if len(tuner.sets) != 0 {
		t.Fatal("SetTargetFPS must not adjust immediately")
	}

	drive(c, clk, 60, 600*time.Millisecond)
	if len(tuner.sets) != 1 || tuner.sets[0] != 15 {
		t.Fatalf("sets = %v, want [15] after raising the target", tuner.sets)
	}

	// Non-positive targets are ignored.
	c.SetTargetFPS(0)
	if c.Stats().TargetFPS != 120 {
		t.Fatalf("TargetFPS = %v, want 120", c.Stats().TargetFPS)
	}
}

func TestStats_IsPureRead(t *testing.T) {
	c, tuner, clk := newTestController(60, 16)
	drive(c, clk, 75, 400*time.Millisecond)

	writes := len(tuner.sets)
	first := c.Stats()
	second := c.Stats()

	if first != second {
		t.Fatalf("Stats mutated state: %+v != %+v", first, second)
	}
	if len(tuner.sets) != writes {
		t.Fatal("Stats wrote the span")
	}
	if first.Span != 16 || first.MinSpan != 1 || first.MaxSpan != 48 || first.TargetFPS != 60 {
		t.Fatalf("Stats = %+v", first)
	}
	if first.AverageFPS < 74 || first.AverageFPS > 76 {
		t.Fatalf("AverageFPS = %v, want ~75", first.AverageFPS)
	}
}

func TestDefaultConfig_FillsZeroValues(t *testing.T) {
	clk := newFakeClock()
	c := newWithClock(&spyTuner{span: 16}, Config{}, clk.now)

	s := c.Stats()
	if s.TargetFPS != 60 || s.MinSpan != 1 || s.MaxSpan != 48 {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if len(c.window) != 10 {
		t.Fatalf("window size = %d, want 10", len(c.window))
	}
}
