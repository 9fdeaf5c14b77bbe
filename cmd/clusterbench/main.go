package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JeffreyCastellano/cluster-lights-go/acquire"
	"github.com/JeffreyCastellano/cluster-lights-go/control"
	"github.com/JeffreyCastellano/cluster-lights-go/engine"
	"github.com/JeffreyCastellano/cluster-lights-go/probe"
	"github.com/JeffreyCastellano/cluster-lights-go/shim"
)

func main() {
	var (
		artifact    = flag.String("artifact", "", "Explicit wasm artifact path (bypasses tier negotiation)")
		base        = flag.String("base", ".", "Artifact directory or http(s) base URL")
		force       = flag.String("force", "", "Force a tier: vectorized, nosimd or fallback")
		noFallback  = flag.Bool("no-fallback", false, "Fail instead of dropping to the emulated tier")
		lights      = flag.Int("lights", 256, "Point lights to register")
		frames      = flag.Int("frames", 600, "Frames to simulate")
		target      = flag.Float64("target", 60, "Target frame rate for the adaptive controller")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		probe.SetLogger(log.Named("probe"))
		acquire.SetLogger(log.Named("acquire"))
		shim.SetLogger(log.Named("shim"))
		engine.SetLogger(log.Named("engine"))
		control.SetLogger(log.Named("control"))
	}

	opts := acquire.DefaultOptions()
	opts.ArtifactPath = *artifact
	opts.ForceTier = *force
	opts.AllowFallback = !*noFallback
	if strings.HasPrefix(*base, "http://") || strings.HasPrefix(*base, "https://") {
		opts.BaseURL = *base
	} else {
		opts.BaseDir = *base
	}

	if *interactive {
		if err := runInteractive(opts, *lights, *target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts, *lights, *frames, *target); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts acquire.Options, lights, frames int, target float64) error {
	ctx := context.Background()

	mod, err := acquire.Acquire(ctx, opts)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}

	eng, err := engine.New(ctx, mod, engine.Config{MaxLights: maxLights(lights)})
	if err != nil {
		mod.Close(ctx)
		return fmt.Errorf("engine: %w", err)
	}
	defer eng.Close(ctx)

	fmt.Printf("Tier: %s\n", mod.Tier())
	fmt.Printf("Exports: %d\n", len(mod.Surface().Names()))

	if err := seedLights(ctx, eng, lights); err != nil {
		return fmt.Errorf("seed lights: %w", err)
	}
	n, err := eng.PointLightCount(ctx)
	if err != nil {
		return fmt.Errorf("light count: %w", err)
	}
	fmt.Printf("Lights: %d\n\n", n)

	cfg := control.DefaultConfig()
	cfg.TargetFPS = target
	ctrl := control.New(eng, cfg)

	fmt.Printf("Simulating %d frames (target %.0f FPS)...\n", frames, target)
	start := time.Now()
	last := start
	for i := 0; i < frames; i++ {
		t := float32(time.Since(start).Seconds())
		if _, err := eng.Update(ctx, t); err != nil {
			return fmt.Errorf("frame %d update: %w", i, err)
		}
		if err := eng.Sort(ctx); err != nil {
			return fmt.Errorf("frame %d sort: %w", i, err)
		}
		now := time.Now()
		ctrl.Step(now.Sub(last))
		last = now
	}
	elapsed := time.Since(start)

	stats := ctrl.Stats()
	fmt.Printf("\nFrames:      %d in %v\n", frames, elapsed.Round(time.Millisecond))
	fmt.Printf("Average FPS: %.1f\n", float64(frames)/elapsed.Seconds())
	fmt.Printf("Window FPS:  %.1f\n", stats.AverageFPS)
	fmt.Printf("Tile span:   %d (bounds %d..%d)\n", stats.Span, stats.MinSpan, stats.MaxSpan)
	return nil
}

// seedLights scatters deterministic pseudo-random point lights through a
// fixed volume so runs are comparable.
func seedLights(ctx context.Context, eng *engine.Engine, n int) error {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		l := engine.PointLight{
			X:         rng.Float32()*200 - 100,
			Y:         rng.Float32() * 50,
			Z:         rng.Float32()*200 - 100,
			Radius:    5 + rng.Float32()*15,
			R:         rng.Float32(),
			G:         rng.Float32(),
			B:         rng.Float32(),
			Intensity: 0.5 + rng.Float32()*2,
		}
		if i%4 == 0 {
			l.AnimSpeed = 0.5 + rng.Float32()
			l.AnimRadius = 2 + rng.Float32()*8
		}
		if _, err := eng.AddPointLight(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func maxLights(requested int) int {
	if requested > 1024 {
		return requested
	}
	return 1024
}
