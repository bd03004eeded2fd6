// package sim implements the firework simulation: particle integration, the
// per-firework state machine, and the controller that owns all active
// fireworks. All state advances on explicit simulation time passed in by the
// caller; nothing here reads the wall clock or global random state.
package sim

import (
	"math/rand"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/aurora-fx/skyburst/common"
)

// Kind discriminates the particle sub-types. Rockets are the ascending seed
// stage and do not decay; embers are ordinary explosion particles; sparkles
// are lighter, faster-decaying flicker particles.
type Kind int

const (
	KindRocket Kind = iota
	KindEmber
	KindSparkle
)

// BurstKind names the two delayed secondary explosions a carrier ember can
// hold.
type BurstKind int

const (
	BurstMini BurstKind = iota
	BurstSpiral
)

// PendingBurst schedules one secondary explosion on a carrier particle. It
// fires exactly once, on the first update at or after CreatedAtMs+DelayMs.
type PendingBurst struct {
	Kind        BurstKind
	DelayMs     float64
	CreatedAtMs float64
	Fired       bool
}

// TrailPoint is one entry of a particle's motion trail, with its own fading
// alpha and size.
type TrailPoint struct {
	Pos   common.Vec2
	Alpha float64
	Size  float64
}

const (
	// TrailCapacity bounds every particle's trail; the oldest entry is
	// evicted once the trail is full.
	TrailCapacity = 20

	// despawnDurationMs is the fade-out length once a despawn starts.
	despawnDurationMs = 1500

	// offscreenMargin is how far past the bottom edge a particle may fall
	// before it is considered gone.
	offscreenMargin = 50

	trailStepFade = 0.88
)

// Particle is one simulated point: physical state, visual state, and an
// optional secondary-burst schedule. Color is hue/saturation/brightness;
// the display resolves it to RGBA at pack time.
type Particle struct {
	Pos common.Vec2
	Vel common.Vec2
	acc common.Vec2

	Mass    float64
	Drag    float64
	Gravity float64

	Size       float64
	Hue        float64 // degrees [0,360)
	Saturation float64 // [0,1]
	Brightness float64 // [0,1]
	Alpha      float64

	Life    float64
	MaxLife float64
	Decay   float64

	Rotation      float64
	RotationSpeed float64

	Trail []TrailPoint

	Kind       Kind
	SpriteSlot int
	Burst      *PendingBurst

	despawning bool
	fade       *gween.Tween
}

// ApplyForce accumulates a force into the pending acceleration, scaled by
// inverse mass.
//
// Parameters:
//   - f: force vector in simulation units
func (p *Particle) ApplyForce(f common.Vec2) {
	m := p.Mass
	if m == 0 {
		m = 1
	}
	p.acc = p.acc.Add(f.Scale(1.0 / m))
}

// ApplyGravity adds the particle's configured gravity to the pending
// vertical acceleration. Screen space is y-down, so gravity is positive.
func (p *Particle) ApplyGravity() {
	p.acc.Y += p.Gravity
}

// Update advances the particle one simulation step.
//
// Despawning particles only fade: alpha tweens from 1 to 0 over 1.5 seconds
// and the lifespan is forced to zero when the fade completes. Live particles
// integrate velocity and position, decay lifespan (rockets excepted), derive
// alpha from remaining life, flicker sparkles, and record a trail entry.
//
// Parameters:
//   - dtMs: elapsed simulation time for this step, in milliseconds
//   - rng: random source for the sparkle flicker
func (p *Particle) Update(dtMs float64, rng *rand.Rand) {
	if p.despawning {
		value, finished := p.fade.Update(float32(dtMs))
		p.Alpha = common.Clamp(float64(value), 0, 1)
		if finished {
			p.Alpha = 0
			p.Life = 0
		}
		return
	}

	p.Vel = p.Vel.Scale(p.Drag)
	p.Vel = p.Vel.Add(p.acc)
	p.Pos = p.Pos.Add(p.Vel)
	p.acc = common.Vec2{}
	p.Rotation += p.RotationSpeed

	if p.Kind != KindRocket {
		p.Life -= p.Decay
		if p.Life < 0 {
			p.Life = 0
		}
		if p.MaxLife > 0 {
			p.Alpha = common.Clamp(p.Life/p.MaxLife, 0, 1)
		}
		if p.Kind == KindSparkle && rng.Float64() < 0.3 {
			p.Brightness = common.Clamp(0.7+rng.Float64()*0.3, 0, 1)
		}
	}

	p.recordTrail()
}

// recordTrail appends the current position to the trail with attenuated
// alpha and size, fading every existing entry and evicting past capacity.
func (p *Particle) recordTrail() {
	for i := range p.Trail {
		p.Trail[i].Alpha *= trailStepFade
	}
	entry := TrailPoint{
		Pos:   p.Pos,
		Alpha: p.Alpha * 0.6,
		Size:  p.Size * 0.5,
	}
	if len(p.Trail) >= TrailCapacity {
		copy(p.Trail, p.Trail[1:])
		p.Trail[len(p.Trail)-1] = entry
		return
	}
	p.Trail = append(p.Trail, entry)
}

// IsDone reports whether the particle should be removed: lifespan exhausted,
// or fallen past the bottom of the playfield by a margin. Rockets never
// exhaust lifespan; they end at explosion or off-screen.
//
// Parameters:
//   - playfieldHeight: vertical bound of the visible area in pixels
//
// Returns:
//   - bool: true once the particle is spent
func (p *Particle) IsDone(playfieldHeight float64) bool {
	if p.Kind != KindRocket && p.Life <= 0 {
		return true
	}
	return p.Pos.Y > playfieldHeight+offscreenMargin
}

// StartDespawn idempotently begins the fade-out. Subsequent updates only
// reduce alpha until the particle's lifespan hits zero.
func (p *Particle) StartDespawn() {
	if p.despawning {
		return
	}
	p.despawning = true
	p.fade = gween.New(float32(p.Alpha), 0, despawnDurationMs, ease.Linear)
}
