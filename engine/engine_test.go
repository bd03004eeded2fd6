package engine

import (
	"math/rand"
	"testing"

	"github.com/aurora-fx/skyburst/config"
	"github.com/aurora-fx/skyburst/engine/renderer"
	"github.com/aurora-fx/skyburst/sim"
	"github.com/aurora-fx/skyburst/sim/shapes"
)

// stubStage records calls so stage ordering can be asserted without a GPU.
type stubStage struct {
	active bool
	order  *[]string
	name   string
}

func (s *stubStage) Active() bool                { return s.active }
func (s *stubStage) Renderer() renderer.Renderer { return nil }
func (s *stubStage) PrepareCompute(particles []*sim.Particle, deltaTime float32) {
	*s.order = append(*s.order, s.name)
}
func (s *stubStage) DrawCalls() error         { return nil }
func (s *stubStage) Resize(width, height int) {}

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	cfg := config.Default()
	controller := sim.NewController(cfg, nil, rand.New(rand.NewSource(1)))
	return NewEngine(WithController(controller)).(*engine)
}

func TestSubmittedCommandsApplyInOrder(t *testing.T) {
	e := newTestEngine(t)

	quiet := config.Default()
	quiet.Gravity = 0.5

	e.SubmitTrigger(sim.Trigger{X: 0.5, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 0.5})
	e.SubmitConfig(quiet)
	e.SubmitTrigger(sim.Trigger{X: 0.2, Y: 0.5, Shape: shapes.ShapeRing, Intensity: 0.5})

	if got := e.controller.ActiveCount(); got != 0 {
		t.Fatalf("controller has %d fireworks before the frame boundary, want 0", got)
	}

	e.drainCommands()

	if got := e.controller.ActiveCount(); got != 2 {
		t.Errorf("controller has %d fireworks after drain, want 2", got)
	}
	if got := e.controller.Config().Gravity; got != 0.5 {
		t.Errorf("controller gravity = %v after drain, want the submitted 0.5", got)
	}
}

func TestFullQueueDropsNewCommands(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < commandQueueDepth+10; i++ {
		e.SubmitTrigger(sim.Trigger{X: 0.5, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 0.5})
	}

	e.drainCommands()

	if got := e.controller.ActiveCount(); got != commandQueueDepth {
		t.Errorf("controller has %d fireworks, want queue depth %d with the rest dropped", got, commandQueueDepth)
	}
}

func TestFinaleSubmitsAtFrameBoundary(t *testing.T) {
	e := newTestEngine(t)

	e.SubmitFinale(sim.Finale{
		Count:   3,
		Trigger: sim.Trigger{Shape: shapes.ShapeBurst, Intensity: 0.5},
	})
	e.drainCommands()

	// The first finale firework launches on the next tick; the rest stagger.
	e.controller.Tick(1)
	if got := e.controller.ActiveCount(); got != 1 {
		t.Errorf("controller has %d fireworks after first tick, want 1", got)
	}
}

func TestStageRegistry(t *testing.T) {
	e := newTestEngine(t)
	var order []string
	s := &stubStage{active: true, order: &order, name: "particles"}

	e.AddStage(3, s)
	if got := e.Stage(3); got != s {
		t.Fatalf("Stage(3) = %v, want the registered stage", got)
	}
	if got := e.Stage(7); got != nil {
		t.Fatalf("Stage(7) = %v, want nil for an empty key", got)
	}

	e.RemoveStage(3)
	if got := e.Stage(3); got != nil {
		t.Errorf("Stage(3) = %v after removal, want nil", got)
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.Quit()
	e.Quit() // second call must not panic on a closed channel

	select {
	case <-e.quitChannel:
	default:
		t.Error("quit channel still open after Quit")
	}
}
