// Package control closes the loop between achieved frame rate and the
// engine's tile-span bound.
//
// The controller piggybacks on the caller's frame loop: Step is called once
// per rendered frame with the frame's elapsed time, and internally gates
// sampling and adjustment on their own cadences. It trades quality for
// frame rate asymmetrically, shrinking the span twice as fast as it grows
// it, and holds still inside a dead band around the target so the span
// does not oscillate under normal jitter.
//
// Step never blocks and never returns an error. A controller that hits an
// edge case (no samples yet, span already pinned at a bound) simply does
// nothing that cycle.
package control
