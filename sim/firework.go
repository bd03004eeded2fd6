package sim

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/sim/shapes"
)

// physics is the snapshot of global constants a firework captures at
// construction. Live config updates affect only fireworks created after the
// merge.
type physics struct {
	gravity         float64
	drag            float64
	rocketSpeed     float64
	playfieldHeight float64
}

type paletteColor struct {
	h, s, v float64
}

// Firework owns one rocket-stage particle, the primary explosion set, and
// any secondary-burst particles. It moves through two states: ascending
// until the rocket reaches apex, then exploded until every particle is
// spent.
type Firework struct {
	launch    common.Vec2
	apexY     float64
	shape     shapes.Shape
	palette   []paletteColor
	intensity float64
	tier      Tier
	combo     int

	skipRocket     bool
	instantExplode bool

	giftSprite   SpriteHandle
	avatarSprite SpriteHandle

	rocket    *Particle
	explosion []*Particle
	secondary []*Particle

	exploded  bool
	cuePlayed bool

	phys  physics
	audio AudioPlayer
	rng   *rand.Rand
}

// defaultPalette is used when a trigger carries no parseable colors.
var defaultPalette = []paletteColor{{h: 45, s: 0.9, v: 1.0}}

// parsePalette converts hex color strings into hue/saturation/brightness
// entries, skipping anything unparseable.
func parsePalette(hexes []string) []paletteColor {
	out := make([]paletteColor, 0, len(hexes))
	for _, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		h, s, v := c.Hsv()
		out = append(out, paletteColor{h: h, s: s, v: v})
	}
	if len(out) == 0 {
		return defaultPalette
	}
	return out
}

// newFirework builds a Firework from a validated trigger. The caller is
// responsible for apex correction; apexY must be strictly above the launch
// baseline (smaller in y-down coordinates).
func newFirework(trig Trigger, launch common.Vec2, apexY float64, phys physics, audio AudioPlayer, rng *rand.Rand) *Firework {
	fw := &Firework{
		launch:         launch,
		apexY:          apexY,
		shape:          trig.Shape,
		palette:        parsePalette(trig.Colors),
		intensity:      math.Max(trig.Intensity, 0.1),
		tier:           trig.Tier,
		combo:          trig.Combo,
		skipRocket:     trig.SkipRocket,
		instantExplode: trig.InstantExplode,
		giftSprite:     trig.GiftSprite,
		avatarSprite:   trig.AvatarSprite,
		phys:           phys,
		audio:          audio,
		rng:            rng,
	}
	if !fw.skipRocket && !fw.instantExplode {
		fw.rocket = fw.newRocket()
	}
	return fw
}

// newRocket creates the ascending seed particle: upward launch velocity with
// a small random horizontal drift. Rockets do not decay.
func (f *Firework) newRocket() *Particle {
	c := f.pickColor()
	return &Particle{
		Pos: f.launch,
		Vel: common.Vec2{
			X: (f.rng.Float64() - 0.5) * 1.2,
			Y: -f.phys.rocketSpeed * (0.9 + f.rng.Float64()*0.2),
		},
		Mass:       1,
		Drag:       1.0,
		Gravity:    f.phys.gravity,
		Size:       3,
		Hue:        c.h,
		Saturation: c.s * 0.5,
		Brightness: 1.0,
		Alpha:      1,
		Life:       1,
		MaxLife:    1,
		Kind:       KindRocket,
	}
}

func (f *Firework) pickColor() paletteColor {
	return f.palette[f.rng.Intn(len(f.palette))]
}

// Update advances the firework one simulation step.
//
// Parameters:
//   - nowMs: current simulation time in milliseconds
//   - dtMs: elapsed simulation time for this step
func (f *Firework) Update(nowMs, dtMs float64) {
	if !f.exploded {
		f.updateAscending(nowMs, dtMs)
		return
	}
	f.updateExploded(nowMs, dtMs)
}

// updateAscending integrates the rocket and fires the explosion once the
// rocket's vertical velocity turns non-negative (apex in y-down space) or
// its height reaches the target apex. Fireworks built with skipRocket or
// instantExplode have no rocket and explode on their first update.
func (f *Firework) updateAscending(nowMs, dtMs float64) {
	if f.rocket == nil {
		f.explode(nowMs)
		return
	}
	f.rocket.ApplyGravity()
	f.rocket.Update(dtMs, f.rng)
	if f.rocket.Vel.Y >= 0 || f.rocket.Pos.Y <= f.apexY {
		f.explode(nowMs)
	}
}

func (f *Firework) updateExploded(nowMs, dtMs float64) {
	f.explosion = f.updateSet(f.explosion, nowMs, dtMs, true)
	f.secondary = f.updateSet(f.secondary, nowMs, dtMs, false)
}

// updateSet integrates every particle in ps, evaluates secondary-burst
// schedules when allowed, and compacts out finished particles in place,
// preserving order.
func (f *Firework) updateSet(ps []*Particle, nowMs, dtMs float64, allowBursts bool) []*Particle {
	keep := ps[:0]
	for _, p := range ps {
		p.ApplyGravity()
		p.Update(dtMs, f.rng)
		if allowBursts {
			f.maybeFireBurst(p, nowMs)
		}
		if !p.IsDone(f.phys.playfieldHeight) {
			keep = append(keep, p)
		}
	}
	return keep
}

// explode transitions to the exploded state, spawning the primary particle
// set from the shape generator. Fires at most once.
func (f *Firework) explode(nowMs float64) {
	if f.exploded {
		return
	}
	f.exploded = true

	origin := f.launch
	if f.rocket != nil {
		origin = f.rocket.Pos
		f.rocket = nil
	} else {
		origin.Y = f.apexY
	}

	count := f.explosionCount()
	field := shapes.Generate(f.shape, count, f.intensity, f.rng)
	f.explosion = make([]*Particle, 0, len(field))
	for _, vel := range field {
		f.explosion = append(f.explosion, f.newExplosionParticle(origin, vel, nowMs))
	}

	f.audio.Play(CueExplosion, common.Clamp(0.4+0.3*f.intensity, 0, 1))
}

// explosionCount computes the primary particle count: a random base in
// [40,100) scaled by intensity, tier, and the combo factor.
func (f *Firework) explosionCount() int {
	base := 40 + f.rng.Float64()*60
	n := int(base * f.intensity * tierMultiplier(f.tier) * comboScale(f.combo))
	if n < 1 {
		n = 1
	}
	return n
}

// newExplosionParticle creates one primary particle. Roughly 15% become
// sparkles; the rest are embers that may carry a gift or avatar sprite and a
// pending secondary-burst schedule.
func (f *Firework) newExplosionParticle(origin, vel common.Vec2, nowMs float64) *Particle {
	c := f.pickColor()
	p := &Particle{
		Pos:           origin,
		Vel:           vel,
		Mass:          1,
		Drag:          f.phys.drag,
		Gravity:       f.phys.gravity,
		Hue:           c.h,
		Saturation:    c.s,
		Brightness:    c.v,
		Alpha:         1,
		Decay:         1,
		RotationSpeed: (f.rng.Float64() - 0.5) * 0.2,
	}

	if f.rng.Float64() < 0.15 {
		p.Kind = KindSparkle
		p.Size = 1.2 + f.rng.Float64()
		p.Life = 30 + f.rng.Float64()*20
		p.Decay = 1.6
	} else {
		p.Kind = KindEmber
		p.Size = 2 + f.rng.Float64()*2.5
		p.Life = 60 + f.rng.Float64()*40
		p.SpriteSlot = int(f.pickSprite())

		switch roll := f.rng.Float64(); {
		case roll < 0.10:
			p.Burst = &PendingBurst{
				Kind:        BurstMini,
				DelayMs:     500 + f.rng.Float64()*300,
				CreatedAtMs: nowMs,
			}
		case roll < 0.18:
			p.Burst = &PendingBurst{
				Kind:        BurstSpiral,
				DelayMs:     600 + f.rng.Float64()*400,
				CreatedAtMs: nowMs,
			}
		}
	}
	p.MaxLife = p.Life
	return p
}

// pickSprite chooses the ember's visual variant: the gift sprite ~70% of the
// time, the avatar otherwise. A missing handle falls back to the plain
// soft-circle sprite.
func (f *Firework) pickSprite() SpriteHandle {
	if f.rng.Float64() < 0.7 {
		if f.giftSprite != SpriteNone {
			return f.giftSprite
		}
		return SpriteNone
	}
	if f.avatarSprite != SpriteNone {
		return f.avatarSprite
	}
	return SpriteNone
}

// maybeFireBurst fires a carrier particle's scheduled secondary burst on the
// first update at or past its delay. Exactly one burst per carrier; the
// first burst of either kind for this firework plays the crackle cue once.
func (f *Firework) maybeFireBurst(p *Particle, nowMs float64) {
	b := p.Burst
	if b == nil || b.Fired || nowMs-b.CreatedAtMs < b.DelayMs {
		return
	}
	b.Fired = true

	switch b.Kind {
	case BurstSpiral:
		f.createSpiralBurst(p)
	default:
		f.createMiniBurst(p)
	}

	if !f.cuePlayed {
		f.cuePlayed = true
		f.audio.Play(CueCrackle, common.Clamp(0.3+0.2*f.intensity, 0, 1))
	}
}

// createMiniBurst spawns 4-8 short-lived sparkles radiating from the source
// particle's position, inheriting a fraction of its velocity.
func (f *Firework) createMiniBurst(src *Particle) {
	n := 4 + f.rng.Intn(5)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * f.rng.Float64()
		speed := 1 + f.rng.Float64()*1.5
		f.secondary = append(f.secondary, f.newSecondarySparkle(
			src,
			src.Pos,
			src.Vel.Scale(0.3).Add(common.FromAngle(angle).Scale(speed)),
		))
	}
}

// createSpiralBurst spawns 3-6 short-lived sparkles laid along a short
// logarithmic spiral offset from the source particle, moving outward along
// it.
func (f *Firework) createSpiralBurst(src *Particle) {
	n := 3 + f.rng.Intn(4)
	phase := 2 * math.Pi * f.rng.Float64()
	for i := 0; i < n; i++ {
		theta := phase + 1.1*float64(i)
		radius := 0.5 * math.Exp(0.25*float64(i))
		offset := common.FromAngle(theta).Scale(radius)
		f.secondary = append(f.secondary, f.newSecondarySparkle(
			src,
			src.Pos.Add(offset),
			src.Vel.Scale(0.2).Add(offset.Normalized().Scale(0.8+f.rng.Float64()*0.8)),
		))
	}
}

func (f *Firework) newSecondarySparkle(src *Particle, pos, vel common.Vec2) *Particle {
	life := 20 + f.rng.Float64()*15
	return &Particle{
		Pos:        pos,
		Vel:        vel,
		Mass:       1,
		Drag:       f.phys.drag,
		Gravity:    f.phys.gravity,
		Size:       1 + f.rng.Float64(),
		Hue:        src.Hue,
		Saturation: src.Saturation * 0.8,
		Brightness: 1.0,
		Alpha:      1,
		Life:       life,
		MaxLife:    life,
		Decay:      1.4,
		Kind:       KindSparkle,
	}
}

// Exploded reports whether the firework has left the ascending state.
func (f *Firework) Exploded() bool {
	return f.exploded
}

// IsDone reports whether the firework is fully spent: exploded with no
// remaining explosion or secondary particles.
//
// Returns:
//   - bool: true once the firework can be removed from the active set
func (f *Firework) IsDone() bool {
	return f.exploded && len(f.explosion) == 0 && len(f.secondary) == 0
}

// appendLive appends the firework's live particles (rocket, explosion,
// secondary, in that order) to dst and returns the extended slice.
func (f *Firework) appendLive(dst []*Particle) []*Particle {
	if f.rocket != nil {
		dst = append(dst, f.rocket)
	}
	dst = append(dst, f.explosion...)
	dst = append(dst, f.secondary...)
	return dst
}
