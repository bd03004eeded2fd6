package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aurora-fx/skyburst/common"
)

func newTestParticle() *Particle {
	return &Particle{
		Pos:        common.Vec2{X: 100, Y: 100},
		Vel:        common.Vec2{X: 1, Y: -2},
		Mass:       1,
		Drag:       0.98,
		Gravity:    0.08,
		Size:       3,
		Hue:        30,
		Saturation: 0.9,
		Brightness: 1,
		Alpha:      1,
		Life:       60,
		MaxLife:    60,
		Decay:      1,
		Kind:       KindEmber,
	}
}

// TestAlphaStaysInRange verifies alpha remains within [0,1] across the whole
// lifetime, including past exhaustion.
func TestAlphaStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := newTestParticle()
	for i := 0; i < 200; i++ {
		p.ApplyGravity()
		p.Update(16.67, rng)
		if p.Alpha < 0 || p.Alpha > 1 {
			t.Fatalf("step %d: alpha %v out of [0,1]", i, p.Alpha)
		}
	}
}

// TestPositiveDecayBoundsLifetime verifies a non-rocket particle with
// positive decay is done within a bounded number of steps.
func TestPositiveDecayBoundsLifetime(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := newTestParticle()
	limit := int(p.MaxLife/p.Decay) + 2
	for i := 0; i < limit; i++ {
		if p.IsDone(720) {
			return
		}
		p.Update(16.67, rng)
	}
	if !p.IsDone(720) {
		t.Errorf("particle not done after %d steps with decay %v", limit, p.Decay)
	}
}

// TestRocketDoesNotDecay verifies the seed stage keeps its lifespan until
// something external ends it.
func TestRocketDoesNotDecay(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := newTestParticle()
	p.Kind = KindRocket
	p.Vel = common.Vec2{Y: -8}
	for i := 0; i < 50; i++ {
		p.Update(16.67, rng)
	}
	if p.Life != 60 {
		t.Errorf("rocket lifespan changed to %v, want 60", p.Life)
	}
}

// TestStraightLineMotion verifies that with zero gravity and no drag the
// velocity is unchanged across 100 updates.
func TestStraightLineMotion(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	p := newTestParticle()
	p.Gravity = 0
	p.Drag = 1.0
	p.Life = 1000
	p.MaxLife = 1000
	v0 := p.Vel
	for i := 0; i < 100; i++ {
		p.ApplyGravity()
		p.Update(16.67, rng)
	}
	const tol = 1e-9
	if math.Abs(p.Vel.X-v0.X) > tol || math.Abs(p.Vel.Y-v0.Y) > tol {
		t.Errorf("velocity drifted from %v to %v", v0, p.Vel)
	}
}

// TestApplyForceScalesByInverseMass verifies heavier particles accelerate
// less from the same force.
func TestApplyForceScalesByInverseMass(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	light := newTestParticle()
	light.Drag = 1.0
	light.Gravity = 0
	heavy := newTestParticle()
	heavy.Drag = 1.0
	heavy.Gravity = 0
	heavy.Mass = 2

	f := common.Vec2{X: 1}
	light.ApplyForce(f)
	heavy.ApplyForce(f)
	light.Update(16.67, rng)
	heavy.Update(16.67, rng)

	if got := light.Vel.X - 1; math.Abs(got-1) > 1e-9 {
		t.Errorf("light particle gained %v velocity, want 1", light.Vel.X-1)
	}
	if got := heavy.Vel.X - 1; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("heavy particle gained %v velocity, want 0.5", got)
	}
}

// TestTrailBounded verifies the trail never grows past its capacity and that
// older entries fade.
func TestTrailBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	p := newTestParticle()
	p.Life = 1000
	p.MaxLife = 1000
	for i := 0; i < TrailCapacity+15; i++ {
		p.Update(16.67, rng)
	}
	if len(p.Trail) != TrailCapacity {
		t.Fatalf("trail length %d, want %d", len(p.Trail), TrailCapacity)
	}
	if p.Trail[0].Alpha >= p.Trail[len(p.Trail)-1].Alpha {
		t.Errorf("oldest trail alpha %v not below newest %v", p.Trail[0].Alpha, p.Trail[len(p.Trail)-1].Alpha)
	}
}

// TestDespawnFadesToZero verifies the despawn fade reaches zero alpha and
// zero lifespan after 1.5 seconds, and that StartDespawn is idempotent.
func TestDespawnFadesToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := newTestParticle()
	p.StartDespawn()
	p.StartDespawn()

	p.Update(750, rng)
	if p.Alpha <= 0 || p.Alpha >= 1 {
		t.Errorf("mid-fade alpha %v, want strictly between 0 and 1", p.Alpha)
	}
	p.Update(800, rng)
	if p.Alpha != 0 {
		t.Errorf("post-fade alpha %v, want 0", p.Alpha)
	}
	if p.Life != 0 {
		t.Errorf("post-fade lifespan %v, want 0", p.Life)
	}
	if !p.IsDone(720) {
		t.Error("despawned particle not done")
	}
}

// TestOffscreenDone verifies a particle past the bottom margin is done even
// with lifespan remaining.
func TestOffscreenDone(t *testing.T) {
	p := newTestParticle()
	p.Pos.Y = 800
	if !p.IsDone(720) {
		t.Error("particle 80px past the bottom edge not done")
	}
	p.Pos.Y = 730
	if p.IsDone(720) {
		t.Error("particle inside the margin reported done")
	}
}
