package display

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/sim"
)

func lane(t *testing.T, buf []byte, record, lane int) float32 {
	t.Helper()
	off := record*GPUParticleStride + lane*4
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func liveParticle(x, y float64) *sim.Particle {
	return &sim.Particle{
		Pos:        common.Vec2{X: x, Y: y},
		Vel:        common.Vec2{X: 1, Y: -2},
		Size:       3,
		Hue:        0, // pure red at full saturation/brightness
		Saturation: 1,
		Brightness: 1,
		Alpha:      1,
		Life:       100,
		MaxLife:    100,
		Kind:       sim.KindEmber,
	}
}

func TestRecordLayout(t *testing.T) {
	p := liveParticle(10, 20)
	p.SpriteSlot = 2

	var g GPUParticle
	g.FromParticle(p)

	buf := make([]byte, GPUParticleStride)
	g.Marshal(buf)

	want := []struct {
		lane  int
		value float32
		name  string
	}{
		{0, 10, "pos.x"},
		{1, 20, "pos.y"},
		{2, 1, "vel.x"},
		{3, -2, "vel.y"},
		{4, 1, "color.r"},
		{5, 0, "color.g"},
		{6, 0, "color.b"},
		{7, 1, "color.a"},
		{8, 3, "size"},
		{9, 100, "life"},
		{10, 100, "maxLife"},
		{11, 2, "spriteSlot"},
	}
	for _, w := range want {
		if got := lane(t, buf, 0, w.lane); got != w.value {
			t.Errorf("lane %d (%s) = %v, want %v", w.lane, w.name, got, w.value)
		}
	}
}

func TestRecordCarriesFadedAlphaInLifeLane(t *testing.T) {
	p := liveParticle(0, 0)
	p.Alpha = 0.25

	var g GPUParticle
	g.FromParticle(p)

	if g.Life != 25 {
		t.Errorf("life lane = %v, want alpha 0.25 scaled into 100 life units = 25", g.Life)
	}
	if g.MaxLife != 100 {
		t.Errorf("maxLife lane = %v, want 100", g.MaxLife)
	}
}

func TestRocketWithoutLifespanStaysVisible(t *testing.T) {
	p := liveParticle(0, 0)
	p.Kind = sim.KindRocket
	p.MaxLife = 0

	var g GPUParticle
	g.FromParticle(p)

	if g.MaxLife <= 0 {
		t.Fatalf("maxLife lane = %v, want a positive guard value", g.MaxLife)
	}
	if frac := g.Life / g.MaxLife; math.Abs(float64(frac-1)) > 1e-6 {
		t.Errorf("life fraction = %v, want 1 for a full-alpha rocket", frac)
	}
}

func TestCapacityClamp(t *testing.T) {
	s := NewSynchronizer(0)
	if s.Capacity() != 1 {
		t.Errorf("capacity = %d, want clamp to 1", s.Capacity())
	}

	s = NewSynchronizer(100)
	if s.Capacity() != 100 {
		t.Errorf("capacity = %d, want 100", s.Capacity())
	}
	if len(s.buf) != 100*GPUParticleStride {
		t.Errorf("buffer size = %d bytes, want %d", len(s.buf), 100*GPUParticleStride)
	}
}

func TestPackOrdersParticlesBeforeTrails(t *testing.T) {
	a := liveParticle(1, 0)
	a.Trail = []sim.TrailPoint{{Pos: common.Vec2{X: 100, Y: 0}, Alpha: 0.5, Size: 1}}
	b := liveParticle(2, 0)

	s := NewSynchronizer(10)
	buf, count := s.Pack([]*sim.Particle{a, b})

	if count != 3 {
		t.Fatalf("packed %d records, want 2 particles + 1 trail point", count)
	}
	if got := lane(t, buf, 0, 0); got != 1 {
		t.Errorf("record 0 pos.x = %v, want first particle at 1", got)
	}
	if got := lane(t, buf, 1, 0); got != 2 {
		t.Errorf("record 1 pos.x = %v, want second particle at 2", got)
	}
	if got := lane(t, buf, 2, 0); got != 100 {
		t.Errorf("record 2 pos.x = %v, want trail point at 100 after all particles", got)
	}
}

func TestPackOverflowKeepsOldest(t *testing.T) {
	particles := make([]*sim.Particle, 5)
	for i := range particles {
		particles[i] = liveParticle(float64(i), 0)
		particles[i].Trail = []sim.TrailPoint{{Pos: common.Vec2{X: 1000, Y: 0}, Alpha: 1, Size: 1}}
	}

	s := NewSynchronizer(3)
	buf, count := s.Pack(particles)

	if count != 3 {
		t.Fatalf("packed %d records, want capacity 3", count)
	}
	if len(buf) != 3*GPUParticleStride {
		t.Fatalf("packed %d bytes, want %d", len(buf), 3*GPUParticleStride)
	}
	// Oldest-first: records 0..2 are the first three particles, no trails.
	for i := 0; i < 3; i++ {
		if got := lane(t, buf, i, 0); got != float32(i) {
			t.Errorf("record %d pos.x = %v, want %d", i, got, i)
		}
	}
}

func TestPackReusesBuffer(t *testing.T) {
	s := NewSynchronizer(10)
	p := liveParticle(0, 0)

	first, _ := s.Pack([]*sim.Particle{p})
	second, _ := s.Pack([]*sim.Particle{p})

	if &first[0] != &second[0] {
		t.Error("Pack allocated a new buffer between frames")
	}
}

func TestTrailRecordShape(t *testing.T) {
	p := liveParticle(0, 0)
	tp := sim.TrailPoint{Pos: common.Vec2{X: 7, Y: 8}, Alpha: 0.4, Size: 1.5}

	var g GPUParticle
	g.FromTrailPoint(p, tp)

	if g.VelX != 0 || g.VelY != 0 {
		t.Errorf("trail velocity = (%v, %v), want zero", g.VelX, g.VelY)
	}
	if g.SpriteSlot != 0 {
		t.Errorf("trail sprite slot = %v, want the plain circle", g.SpriteSlot)
	}
	if g.MaxLife != 1 || math.Abs(float64(g.Life-0.4)) > 1e-6 {
		t.Errorf("trail life lanes = %v/%v, want 0.4/1", g.Life, g.MaxLife)
	}
	if g.Size != 1.5 {
		t.Errorf("trail size = %v, want 1.5", g.Size)
	}
}
