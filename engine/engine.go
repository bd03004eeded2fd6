package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/aurora-fx/skyburst/config"
	"github.com/aurora-fx/skyburst/engine/profiler"
	"github.com/aurora-fx/skyburst/engine/renderer"
	"github.com/aurora-fx/skyburst/engine/window"
	"github.com/aurora-fx/skyburst/sim"
)

// commandQueueDepth is the capacity of the frame command queue. Submissions
// beyond this depth within a single frame are dropped.
const commandQueueDepth = 256

// maxFrameDeltaMs caps the simulation step after a stall (window drag, debugger
// pause) so particles do not tunnel across the playfield in one tick.
const maxFrameDeltaMs = 100.0

// Stage is a rendering layer driven by the engine frame loop. Stages receive
// the live particle population each frame, encode their compute and draw work
// through a shared Renderer, and react to surface resizes.
type Stage interface {
	// Active reports whether this stage should be processed this frame.
	Active() bool

	// Renderer returns the Renderer this stage encodes work through.
	Renderer() renderer.Renderer

	// PrepareCompute uploads frame data and encodes compute dispatches for this
	// frame. Called between BeginComputeFrame and EndComputeFrame.
	//
	// Parameters:
	//   - particles: the live particle population, valid only for this frame
	//   - deltaTime: elapsed time since the previous frame in seconds
	PrepareCompute(particles []*sim.Particle, deltaTime float32)

	// DrawCalls encodes this stage's draw commands into the current render pass.
	// Called between BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if a draw call could not be encoded
	DrawCalls() error

	// Resize notifies the stage that the surface dimensions changed.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)
}

// engine implements the Engine interface.
// Runs the frame loop goroutine and owns the simulation controller.
type engine struct {
	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	controller *sim.Controller

	// commands is the frame command queue. Closures submitted here are applied
	// to the controller in FIFO order at the top of the next frame, before the
	// simulation tick. This keeps trigger, finale, and config ordering intact
	// and keeps all controller access on the frame goroutine.
	commands chan func(*sim.Controller)

	profiler         *profiler.Profiler
	profilingEnabled bool

	stages map[int]Stage

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the firework display.
// It orchestrates the frame loop, simulation, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Controller returns the simulation controller owned by this engine.
	// Direct calls on the controller are only safe before Run; once the frame
	// loop is running, use the Submit methods instead.
	//
	// Returns:
	//   - *sim.Controller: the simulation controller
	Controller() *sim.Controller

	// SubmitTrigger queues a firework trigger for the next frame.
	// Safe to call from any goroutine. Dropped with a log line if the
	// command queue is full.
	//
	// Parameters:
	//   - trig: the trigger to queue
	SubmitTrigger(trig sim.Trigger)

	// SubmitFinale queues a finale volley for the next frame.
	// Safe to call from any goroutine. Dropped with a log line if the
	// command queue is full.
	//
	// Parameters:
	//   - fin: the finale to queue
	SubmitFinale(fin sim.Finale)

	// SubmitConfig queues a configuration replacement for the next frame.
	// The new configuration takes effect before the next simulation tick;
	// fireworks already in flight keep the physics they were created with.
	// Safe to call from any goroutine. Dropped with a log line if the
	// command queue is full.
	//
	// Parameters:
	//   - cfg: the configuration to apply
	SubmitConfig(cfg config.Config)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// AddStage registers a stage at the given z-index key.
	// Stages are processed in ascending key order during the frame loop.
	//
	// Parameters:
	//   - key: the z-index determining processing order (lower draws first)
	//   - s: the Stage to register
	AddStage(key int, s Stage)

	// RemoveStage removes the stage at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the stage to remove
	RemoveStage(key int)

	// Stage retrieves the stage registered at the given z-index key.
	// Returns nil if no stage exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the stage to retrieve
	//
	// Returns:
	//   - Stage: the stage at the key, or nil if not found
	Stage(key int) Stage

	// Run starts the frame loop and blocks until the window closes.
	Run()

	// Quit signals the frame loop to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the command queue and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, controller, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:      make(chan struct{}),
		commands:         make(chan func(*sim.Controller), commandQueueDepth),
		stages:           make(map[int]Stage),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.controller == nil {
		e.controller = sim.NewController(config.Default(), nil, nil)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, s := range e.stages {
				if r := s.Renderer(); r != nil {
					r.Resize(width, height)
				}
				s.Resize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Controller() *sim.Controller {
	return e.controller
}

func (e *engine) Run() {
	e.running = true
	e.wg.Add(2)
	go e.handleFrames()
	go e.handleQuit()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
}

// Quit signals the frame loop to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// submit enqueues a controller command without blocking. A full queue drops
// the command; the simulation stays responsive at the cost of lost input.
func (e *engine) submit(kind string, fn func(*sim.Controller)) {
	select {
	case e.commands <- fn:
	default:
		log.Printf("engine: command queue full, dropping %s", kind)
	}
}

func (e *engine) SubmitTrigger(trig sim.Trigger) {
	e.submit("trigger", func(c *sim.Controller) {
		c.AddFirework(trig)
	})
}

func (e *engine) SubmitFinale(fin sim.Finale) {
	e.submit("finale", func(c *sim.Controller) {
		c.HandleFinale(fin)
	})
}

func (e *engine) SubmitConfig(cfg config.Config) {
	e.submit("config", func(c *sim.Controller) {
		c.SetConfig(cfg)
	})
}

// handleFrames runs the frame loop in its own goroutine. Each frame applies
// queued commands in FIFO order, advances the simulation, then processes
// active stages in ascending z-index order through the full frame lifecycle:
// compute dispatch, draw calls, and present.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleFrames() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("frame goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			e.drainCommands()

			dtMs := float64(dt) * 1000
			if dtMs > maxFrameDeltaMs {
				dtMs = maxFrameDeltaMs
			}
			particles := e.controller.Tick(dtMs)

			// Process all active stages in ascending z-index order.
			// The engine owns the frame lifecycle: BeginFrame once, DrawCalls per
			// stage, EndFrame + Present once. All compute dispatches batch into a
			// single GPU submission ahead of the render pass.
			keys := make([]int, 0, len(e.stages))
			for k := range e.stages {
				keys = append(keys, k)
			}
			sort.Ints(keys)

			var activeStages []Stage
			for _, k := range keys {
				s := e.stages[k]
				if s.Active() {
					activeStages = append(activeStages, s)
				}
			}

			if len(activeStages) > 0 {
				// Use the first active stage's renderer to manage the frame
				frameRenderer := activeStages[0].Renderer()
				if frameRenderer != nil {
					if err := frameRenderer.BeginComputeFrame(); err == nil {
						for _, s := range activeStages {
							s.PrepareCompute(particles, dt)
						}
						frameRenderer.EndComputeFrame()
					}

					if err := frameRenderer.BeginFrame(); err == nil {
						for _, s := range activeStages {
							_ = s.DrawCalls()
						}
						frameRenderer.EndFrame()
						frameRenderer.Present()
					}
				}
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick(len(particles))
			}

			// Frame rate limiting
			if e.frameLimit > 0 {
				elapsed := time.Since(lastFrame)
				if remaining := e.frameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// drainCommands applies every queued command to the controller in submission
// order. Runs on the frame goroutine only.
func (e *engine) drainCommands() {
	for {
		select {
		case fn := <-e.commands:
			fn(e.controller)
		default:
			return
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddStage(key int, s Stage) {
	e.stages[key] = s
}

func (e *engine) RemoveStage(key int) {
	delete(e.stages, key)
}

func (e *engine) Stage(key int) Stage {
	return e.stages[key]
}
