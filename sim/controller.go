package sim

import (
	"log"
	"math/rand"
	"time"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/config"
)

// pendingLaunch is a finale firework waiting for its staggered launch time.
type pendingLaunch struct {
	dueMs float64
	trig  Trigger
}

// Controller owns every active firework. It validates triggers, schedules
// finales, advances simulation time, and flattens the live particle
// population for the display each tick. It is an explicit handle: multiple
// independent controllers can run side by side (headless tests included)
// with no shared state.
type Controller struct {
	cfg       config.Config
	fireworks []*Firework
	pending   []pendingLaunch
	audio     AudioPlayer
	rng       *rand.Rand
	timeMs    float64
	scratch   []*Particle
}

// NewController creates a controller with the given configuration, audio
// collaborator, and random source. A nil audio player falls back to silence;
// a nil rng is seeded from the wall clock.
//
// Parameters:
//   - cfg: simulation constants
//   - audio: fire-and-forget cue player, may be nil
//   - rng: random source, may be nil
//
// Returns:
//   - *Controller: the ready controller
func NewController(cfg config.Config, audio AudioPlayer, rng *rand.Rand) *Controller {
	if audio == nil {
		audio = NopAudio{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		cfg:     cfg,
		audio:   audio,
		rng:     rng,
		scratch: make([]*Particle, 0, cfg.MaxParticles),
	}
}

// AddFirework validates a trigger, corrects an invalid apex, constructs the
// firework, and appends it to the active set. A launch cue plays unless the
// trigger skips the rocket stage.
//
// Parameters:
//   - trig: the trigger message
func (c *Controller) AddFirework(trig Trigger) {
	launch := common.Vec2{
		X: common.Clamp(trig.X, 0, 1) * c.cfg.PlayfieldWidth,
		Y: c.cfg.PlayfieldHeight,
	}
	apexY := c.cfg.PlayfieldHeight * (1 - trig.Y)
	if apexY >= launch.Y {
		log.Printf("skyburst: trigger apex %.1f at or below launch baseline %.1f, using default fraction %.2f", apexY, launch.Y, c.cfg.ApexFraction)
		apexY = c.cfg.PlayfieldHeight * (1 - c.cfg.ApexFraction)
	}

	fw := newFirework(trig, launch, apexY, c.physics(), c.audio, c.rng)
	c.fireworks = append(c.fireworks, fw)

	if !trig.SkipRocket && !trig.InstantExplode {
		c.audio.Play(CueLaunch, common.Clamp(0.3+0.2*trig.Intensity, 0, 1))
	}
}

// HandleFinale schedules a staggered volley: count fireworks spaced by the
// configured stagger, each at a uniform random horizontal position and an
// apex in the top band of the playfield. The first launches immediately.
//
// Parameters:
//   - fin: the finale message
func (c *Controller) HandleFinale(fin Finale) {
	for i := 0; i < fin.Count; i++ {
		trig := fin.Trigger
		trig.X = c.rng.Float64()
		trig.Y = 0.8 + c.rng.Float64()*0.2
		due := c.timeMs + float64(i)*c.cfg.FinaleStaggerMs
		c.pending = append(c.pending, pendingLaunch{dueMs: due, trig: trig})
	}
}

// Tick advances simulation time by dtMs, launches any due finale fireworks,
// updates every active firework, prunes spent ones, and returns the
// flattened live particle population in firework insertion order. The
// returned slice is reused across ticks; callers must consume it before the
// next Tick.
//
// Parameters:
//   - dtMs: elapsed simulation time in milliseconds
//
// Returns:
//   - []*Particle: every live particle this frame
func (c *Controller) Tick(dtMs float64) []*Particle {
	c.timeMs += dtMs

	c.launchDue()

	keep := c.fireworks[:0]
	for _, fw := range c.fireworks {
		fw.Update(c.timeMs, dtMs)
		if !fw.IsDone() {
			keep = append(keep, fw)
		}
	}
	c.fireworks = keep

	c.scratch = c.scratch[:0]
	for _, fw := range c.fireworks {
		c.scratch = fw.appendLive(c.scratch)
	}
	return c.scratch
}

// launchDue fires every pending finale launch whose time has come,
// preserving FIFO order.
func (c *Controller) launchDue() {
	remaining := c.pending[:0]
	for _, pl := range c.pending {
		if pl.dueMs <= c.timeMs {
			c.AddFirework(pl.trig)
			continue
		}
		remaining = append(remaining, pl)
	}
	c.pending = remaining
}

// SetConfig replaces the controller's configuration. Intended to be called
// between ticks only; fireworks already in flight keep the constants they
// captured at construction.
//
// Parameters:
//   - cfg: the merged configuration
func (c *Controller) SetConfig(cfg config.Config) {
	c.cfg = cfg
}

// Config returns the controller's current configuration.
func (c *Controller) Config() config.Config {
	return c.cfg
}

// TimeMs returns the current simulation time in milliseconds.
func (c *Controller) TimeMs() float64 {
	return c.timeMs
}

// ActiveCount returns the number of active fireworks, pending finale
// launches excluded.
func (c *Controller) ActiveCount() int {
	return len(c.fireworks)
}

func (c *Controller) physics() physics {
	return physics{
		gravity:         c.cfg.Gravity,
		drag:            c.cfg.Drag,
		rocketSpeed:     c.cfg.RocketSpeed,
		playfieldHeight: c.cfg.PlayfieldHeight,
	}
}
