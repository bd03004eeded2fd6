// package shapes provides pure velocity-field generators for firework
// explosion silhouettes. Each generator maps a requested particle count and
// an intensity scalar to an ordered sequence of initial velocity vectors.
// All randomness comes from the caller's rand source, so output is
// reproducible under a fixed seed.
package shapes

import (
	"math"
	"math/rand"

	"github.com/aurora-fx/skyburst/common"
)

// Shape names an explosion silhouette.
type Shape string

const (
	ShapeBurst  Shape = "burst"
	ShapeHeart  Shape = "heart"
	ShapeStar   Shape = "star"
	ShapeSpiral Shape = "spiral"
	ShapePaws   Shape = "paws"
	ShapeRing   Shape = "ring"
)

// speedScale converts a generator's unit-speed output into simulation
// velocity units (pixels per step).
const speedScale = 3.0

// Known reports whether s names one of the built-in silhouettes.
//
// Parameters:
//   - s: the shape key to check
//
// Returns:
//   - bool: true if a generator exists for s
func Known(s Shape) bool {
	switch s {
	case ShapeBurst, ShapeHeart, ShapeStar, ShapeSpiral, ShapePaws, ShapeRing:
		return true
	}
	return false
}

// Generate produces the initial velocity field for one explosion. The
// returned length tracks count approximately; integer distribution across
// rings, layers, and arms may shift it by a few entries. Unknown shapes use
// the burst generator.
//
// Parameters:
//   - shape: the silhouette key
//   - count: approximate number of velocity vectors to produce
//   - intensity: positive effect-magnitude scalar
//   - rng: random source for jitter
//
// Returns:
//   - []common.Vec2: ordered initial velocities in simulation units
func Generate(shape Shape, count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	if count < 1 {
		count = 1
	}
	if intensity <= 0 {
		intensity = 1
	}
	switch shape {
	case ShapeHeart:
		return heart(count, intensity, rng)
	case ShapeStar:
		return star(count, intensity, rng)
	case ShapeSpiral:
		return spiral(count, intensity, rng)
	case ShapePaws:
		return paws(count, intensity, rng)
	case ShapeRing:
		return ring(count, intensity, rng)
	default:
		return burst(count, intensity, rng)
	}
}

// burst fills 2+floor(intensity) concentric rings, each ~30% faster than the
// ring inside it, with small angular jitter per particle.
func burst(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	rings := 2 + int(intensity)
	perRing := count / rings
	if perRing < 1 {
		perRing = 1
	}
	out := make([]common.Vec2, 0, rings*perRing)
	for r := 0; r < rings; r++ {
		speed := speedScale * intensity * (1.0 + 0.3*float64(r))
		for i := 0; i < perRing; i++ {
			angle := 2*math.Pi*float64(i)/float64(perRing) + (rng.Float64()-0.5)*0.15
			out = append(out, common.FromAngle(angle).Scale(speed))
		}
	}
	return out
}

// heart samples the parametric heart curve across 4 layers. Screen space is
// y-down, so the curve's vertical component is negated to keep the heart
// upright.
func heart(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	const layers = 4
	perLayer := count / layers
	if perLayer < 1 {
		perLayer = 1
	}
	out := make([]common.Vec2, 0, layers*perLayer)
	for l := 0; l < layers; l++ {
		radius := 0.4 + 0.6*float64(l+1)/float64(layers)
		for i := 0; i < perLayer; i++ {
			t := 2 * math.Pi * float64(i) / float64(perLayer)
			hx := 16 * math.Pow(math.Sin(t), 3)
			hy := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
			dir := common.Vec2{X: hx, Y: -hy}.Normalized()
			mag := common.Vec2{X: hx, Y: hy}.Length() / 17.0
			speed := speedScale * intensity * radius * mag
			speed *= 1 + (rng.Float64()-0.5)*0.08
			out = append(out, dir.Scale(speed))
		}
	}
	return out
}

// star builds 5 points, each an outer-tip cluster plus a slower inner-valley
// cluster at the midpoint angle between adjacent points.
func star(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	const points = 5
	perPoint := count / points
	if perPoint < 2 {
		perPoint = 2
	}
	tipCount := perPoint * 2 / 3
	valleyCount := perPoint - tipCount
	out := make([]common.Vec2, 0, points*perPoint)
	for p := 0; p < points; p++ {
		tipAngle := 2*math.Pi*float64(p)/points - math.Pi/2
		valleyAngle := tipAngle + math.Pi/points
		for i := 0; i < tipCount; i++ {
			angle := tipAngle + (rng.Float64()-0.5)*0.12
			speed := speedScale * intensity * (1.4 + rng.Float64()*0.2)
			out = append(out, common.FromAngle(angle).Scale(speed))
		}
		for i := 0; i < valleyCount; i++ {
			angle := valleyAngle + (rng.Float64()-0.5)*0.2
			speed := speedScale * intensity * (0.6 + rng.Float64()*0.15)
			out = append(out, common.FromAngle(angle).Scale(speed))
		}
	}
	return out
}

// spiral distributes particles along 3 arms over 3 turns, speed growing
// linearly with sample index.
func spiral(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	const (
		arms  = 3
		turns = 3.0
	)
	perArm := count / arms
	if perArm < 1 {
		perArm = 1
	}
	out := make([]common.Vec2, 0, arms*perArm)
	for a := 0; a < arms; a++ {
		armOffset := 2 * math.Pi * float64(a) / arms
		for i := 0; i < perArm; i++ {
			t := float64(i) / float64(perArm)
			angle := turns*2*math.Pi*t + armOffset
			speed := speedScale * intensity * (0.3 + 1.2*t)
			speed *= 1 + (rng.Float64()-0.5)*0.05
			out = append(out, common.FromAngle(angle).Scale(speed))
		}
	}
	return out
}

// paws places a central palm pad holding 40% of the particles, offset toward
// the palm direction, and four toe pads as small local rings at fixed
// angular and radial offsets.
func paws(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	palmCount := count * 40 / 100
	if palmCount < 1 {
		palmCount = 1
	}
	const toes = 4
	perToe := (count - palmCount) / toes
	if perToe < 1 {
		perToe = 1
	}
	// Palm points down-screen; toes fan across the top.
	palmDir := common.Vec2{X: 0, Y: 0.35}
	out := make([]common.Vec2, 0, palmCount+toes*perToe)
	for i := 0; i < palmCount; i++ {
		angle := 2 * math.Pi * float64(i) / float64(palmCount)
		radius := 0.5 + rng.Float64()*0.3
		v := common.FromAngle(angle).Scale(radius).Add(palmDir)
		out = append(out, v.Scale(speedScale*intensity))
	}
	toeAngles := [toes]float64{-2.2, -1.85, -1.29, -0.94}
	for tIdx := 0; tIdx < toes; tIdx++ {
		center := common.FromAngle(toeAngles[tIdx]).Scale(1.1)
		for i := 0; i < perToe; i++ {
			angle := 2 * math.Pi * float64(i) / float64(perToe)
			radius := 0.18 + rng.Float64()*0.08
			v := center.Add(common.FromAngle(angle).Scale(radius))
			out = append(out, v.Scale(speedScale*intensity))
		}
	}
	return out
}

// ring fills 2+floor(intensity/2) concentric rings of uniformly spaced
// angles, speed scaled by each ring's radius fraction.
func ring(count int, intensity float64, rng *rand.Rand) []common.Vec2 {
	rings := 2 + int(intensity/2)
	perRing := count / rings
	if perRing < 1 {
		perRing = 1
	}
	out := make([]common.Vec2, 0, rings*perRing)
	for r := 0; r < rings; r++ {
		fraction := float64(r+1) / float64(rings)
		speed := speedScale * intensity * fraction
		for i := 0; i < perRing; i++ {
			angle := 2*math.Pi*float64(i)/float64(perRing) + (rng.Float64()-0.5)*0.04
			out = append(out, common.FromAngle(angle).Scale(speed))
		}
	}
	return out
}
