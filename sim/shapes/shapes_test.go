package shapes

import (
	"math"
	"math/rand"
	"testing"
)

// TestGenerateLengthTracksCount verifies every generator returns a sequence
// whose length is proportional to the requested count, within the slack
// introduced by integer distribution across rings, layers, and arms.
func TestGenerateLengthTracksCount(t *testing.T) {
	tests := []struct {
		shape     Shape
		count     int
		intensity float64
	}{
		{ShapeBurst, 100, 1.0},
		{ShapeBurst, 60, 2.5},
		{ShapeHeart, 80, 1.0},
		{ShapeStar, 100, 1.5},
		{ShapeSpiral, 90, 1.0},
		{ShapePaws, 100, 1.0},
		{ShapeRing, 100, 3.0},
	}
	for _, tt := range tests {
		rng := rand.New(rand.NewSource(1))
		got := Generate(tt.shape, tt.count, tt.intensity, rng)
		lo := int(float64(tt.count) * 0.7)
		hi := int(float64(tt.count)*1.3) + 10
		if len(got) < lo || len(got) > hi {
			t.Errorf("Generate(%s, %d, %v) returned %d vectors, want within [%d, %d]",
				tt.shape, tt.count, tt.intensity, len(got), lo, hi)
		}
	}
}

// TestGenerateDeterministicUnderSeed verifies that two runs with identically
// seeded sources produce identical velocity fields.
func TestGenerateDeterministicUnderSeed(t *testing.T) {
	for _, shape := range []Shape{ShapeBurst, ShapeHeart, ShapeStar, ShapeSpiral, ShapePaws, ShapeRing} {
		a := Generate(shape, 75, 1.2, rand.New(rand.NewSource(42)))
		b := Generate(shape, 75, 1.2, rand.New(rand.NewSource(42)))
		if len(a) != len(b) {
			t.Fatalf("%s: lengths differ: %d vs %d", shape, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s: vector %d differs: %v vs %v", shape, i, a[i], b[i])
				break
			}
		}
	}
}

// TestGenerateUnknownShapeFallsBack verifies an unrecognized key produces the
// same field as the burst generator instead of failing.
func TestGenerateUnknownShapeFallsBack(t *testing.T) {
	got := Generate(Shape("comet"), 60, 1.0, rand.New(rand.NewSource(7)))
	want := Generate(ShapeBurst, 60, 1.0, rand.New(rand.NewSource(7)))
	if len(got) != len(want) {
		t.Fatalf("fallback length %d, burst length %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("fallback diverges from burst at index %d", i)
		}
	}
}

// TestKnown covers the recognized shape keys.
func TestKnown(t *testing.T) {
	for _, shape := range []Shape{ShapeBurst, ShapeHeart, ShapeStar, ShapeSpiral, ShapePaws, ShapeRing} {
		if !Known(shape) {
			t.Errorf("Known(%s) = false, want true", shape)
		}
	}
	if Known(Shape("comet")) {
		t.Error("Known(comet) = true, want false")
	}
}

// TestBurstRingSpeedsIncrease verifies outer burst rings move faster than
// inner ones.
func TestBurstRingSpeedsIncrease(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	field := Generate(ShapeBurst, 90, 1.0, rng)
	// intensity 1.0 gives 3 rings of 30.
	inner := field[0].Length()
	outer := field[len(field)-1].Length()
	if outer <= inner {
		t.Errorf("outer ring speed %v not greater than inner %v", outer, inner)
	}
}

// TestRingSpeedsScaleWithRadius verifies ring silhouette speeds grow with the
// ring's radius fraction.
func TestRingSpeedsScaleWithRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	field := Generate(ShapeRing, 80, 1.0, rng)
	inner := field[0].Length()
	outer := field[len(field)-1].Length()
	if outer <= inner {
		t.Errorf("outer ring speed %v not greater than inner %v", outer, inner)
	}
}

// TestHeartTipPointsDown verifies the silhouette stays upright in screen
// coordinates: the tip is the curve's farthest point, and it must travel
// down-screen (positive Y) while the lobes travel up.
func TestHeartTipPointsDown(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	field := Generate(ShapeHeart, 120, 1.0, rng)
	var maxDown, maxUp float64
	for _, v := range field {
		if v.Y > maxDown {
			maxDown = v.Y
		}
		if -v.Y > maxUp {
			maxUp = -v.Y
		}
	}
	if maxUp == 0 || maxDown == 0 {
		t.Fatal("heart field missing up-screen or down-screen velocities")
	}
	if maxDown <= maxUp {
		t.Errorf("tip speed %v not greater than lobe speed %v; heart is inverted", maxDown, maxUp)
	}
}

// TestSpeedsFinite guards against NaN or infinite velocities from any
// generator.
func TestSpeedsFinite(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, shape := range []Shape{ShapeBurst, ShapeHeart, ShapeStar, ShapeSpiral, ShapePaws, ShapeRing} {
		for _, v := range Generate(shape, 50, 2.0, rng) {
			if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
				t.Fatalf("%s produced non-finite velocity %v", shape, v)
			}
		}
	}
}
