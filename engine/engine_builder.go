package engine

import (
	"time"

	"github.com/aurora-fx/skyburst/engine/window"
	"github.com/aurora-fx/skyburst/sim"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithController sets the simulation controller the engine frame loop drives.
// When omitted, the engine creates a controller with default configuration,
// silent audio, and a clock-seeded random source.
//
// Parameters:
//   - c: a pre-configured simulation controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithController(c *sim.Controller) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithStage registers a stage at the given z-index key during engine construction.
// Stages are processed in ascending key order during the frame loop.
//
// Parameters:
//   - key: the z-index determining processing order (lower draws first)
//   - s: the Stage to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStage(key int, s Stage) EngineBuilderOption {
	return func(e *engine) {
		e.stages[key] = s
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the frame loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}
