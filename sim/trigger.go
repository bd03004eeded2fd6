package sim

import "github.com/aurora-fx/skyburst/sim/shapes"

// Tier is the coarse intensity classification carried by a trigger. It
// multiplies the explosion particle count.
type Tier string

const (
	TierSmall   Tier = "small"
	TierMedium  Tier = "medium"
	TierBig     Tier = "big"
	TierMassive Tier = "massive"
)

// tierMultiplier maps a tier to its particle-count factor. Unknown tiers
// behave as medium.
func tierMultiplier(t Tier) float64 {
	switch t {
	case TierSmall:
		return 0.5
	case TierBig:
		return 1.5
	case TierMassive:
		return 2.0
	default:
		return 1.0
	}
}

// comboScale converts a consecutive-trigger count into the particle-count
// factor. Growth is 20% per combo step, damped at the rapid-fire
// thresholds: 70% of the grown value from combo 5, and a flat half from
// combo 10 so spamming can never outgrow a single trigger's explosion.
func comboScale(combo int) float64 {
	if combo < 1 {
		combo = 1
	}
	grown := 1.0 + float64(combo-1)*0.2
	switch {
	case combo >= 10:
		return 0.5
	case combo >= 5:
		return 0.7 * grown
	default:
		return grown
	}
}

// SpriteHandle identifies a decoded visual asset in the sprite atlas.
// SpriteNone is the plain soft-circle sprite every particle falls back to.
type SpriteHandle int

const SpriteNone SpriteHandle = 0

// Trigger is one firework request from the external transport collaborator.
// Position is normalized: X in [0,1] left to right, Y in [0,1] measured up
// from the bottom edge.
type Trigger struct {
	X, Y           float64
	Shape          shapes.Shape
	Intensity      float64
	Colors         []string // hex colors, e.g. "#ff9a00"
	Tier           Tier
	Combo          int
	SkipRocket     bool
	InstantExplode bool
	GiftSprite     SpriteHandle
	AvatarSprite   SpriteHandle
}

// Finale requests a staggered volley. Every spawned firework inherits the
// embedded trigger's fields; positions are randomized per launch.
type Finale struct {
	Count int
	Trigger
}
