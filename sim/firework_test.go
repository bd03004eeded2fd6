package sim

import (
	"math/rand"
	"testing"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/config"
	"github.com/aurora-fx/skyburst/sim/shapes"
)

// recordingAudio captures every cue for assertions.
type recordingAudio struct {
	cues    []Cue
	volumes []float64
}

func (r *recordingAudio) Play(cue Cue, volume float64) {
	r.cues = append(r.cues, cue)
	r.volumes = append(r.volumes, volume)
}

func (r *recordingAudio) count(cue Cue) int {
	n := 0
	for _, c := range r.cues {
		if c == cue {
			n++
		}
	}
	return n
}

func testPhysics() physics {
	cfg := config.Default()
	return physics{
		gravity:         cfg.Gravity,
		drag:            cfg.Drag,
		rocketSpeed:     cfg.RocketSpeed,
		playfieldHeight: cfg.PlayfieldHeight,
	}
}

// TestTierMultiplier covers the four tier factors and the unknown fallback.
func TestTierMultiplier(t *testing.T) {
	tests := []struct {
		tier Tier
		want float64
	}{
		{TierSmall, 0.5},
		{TierMedium, 1.0},
		{TierBig, 1.5},
		{TierMassive, 2.0},
		{Tier("legendary"), 1.0},
	}
	for _, tt := range tests {
		if got := tierMultiplier(tt.tier); got != tt.want {
			t.Errorf("tierMultiplier(%s) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

// TestComboScaleDampensSpam verifies rapid-fire combos shrink the explosion:
// a combo of 10 or more yields at most half of a single trigger's count.
func TestComboScaleDampensSpam(t *testing.T) {
	if got := comboScale(1); got != 1.0 {
		t.Errorf("comboScale(1) = %v, want 1.0", got)
	}
	if comboScale(3) <= comboScale(1) {
		t.Error("combo growth absent below the damping threshold")
	}
	if comboScale(5) >= comboScale(4) {
		t.Errorf("comboScale(5) = %v not damped below comboScale(4) = %v", comboScale(5), comboScale(4))
	}
	for combo := 10; combo <= 20; combo += 5 {
		if got := comboScale(combo); got > 0.5*comboScale(1) {
			t.Errorf("comboScale(%d) = %v, want <= %v", combo, got, 0.5*comboScale(1))
		}
	}
}

// TestSkipRocketExplodesOnFirstUpdate verifies a rocketless firework is in
// the exploded state after exactly one update.
func TestSkipRocketExplodesOnFirstUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fw := newFirework(Trigger{
		X: 0.5, Y: 0.5,
		Shape:      shapes.ShapeBurst,
		Intensity:  1,
		Tier:       TierMedium,
		Combo:      1,
		SkipRocket: true,
	}, common.Vec2{X: 640, Y: 720}, 360, testPhysics(), NopAudio{}, rng)

	if fw.Exploded() {
		t.Fatal("firework exploded before first update")
	}
	fw.Update(16.67, 16.67)
	if !fw.Exploded() {
		t.Fatal("skipRocket firework not exploded after one update")
	}
	if len(fw.explosion) == 0 {
		t.Error("explosion produced no particles")
	}
}

// TestRocketAscendsThenExplodes verifies the ascending state ends at apex
// and the explosion fires exactly once with a particle count inside the
// documented bounds for intensity 1 and the medium tier.
func TestRocketAscendsThenExplodes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	audio := &recordingAudio{}
	fw := newFirework(Trigger{
		X: 0.5, Y: 0.5,
		Shape:     shapes.ShapeBurst,
		Intensity: 1,
		Tier:      TierMedium,
		Combo:     1,
	}, common.Vec2{X: 640, Y: 720}, 360, testPhysics(), audio, rng)

	now := 0.0
	for i := 0; i < 600 && !fw.Exploded(); i++ {
		now += 16.67
		fw.Update(now, 16.67)
	}
	if !fw.Exploded() {
		t.Fatal("rocket never reached apex")
	}
	if audio.count(CueExplosion) != 1 {
		t.Errorf("explosion cue played %d times, want 1", audio.count(CueExplosion))
	}

	// Generator lengths track the requested count approximately.
	n := len(fw.explosion)
	if n < 28 || n > 130 {
		t.Errorf("explosion particle count %d outside expected bounds [28, 130]", n)
	}
}

// TestExplosionCountComboHalving verifies the computed count for combo >= 10
// is at most half the combo 1 count under a fixed random base.
func TestExplosionCountComboHalving(t *testing.T) {
	mk := func(combo int, seed int64) int {
		fw := &Firework{
			intensity: 1,
			tier:      TierMedium,
			combo:     combo,
			rng:       rand.New(rand.NewSource(seed)),
		}
		return fw.explosionCount()
	}
	// Same seed gives the same random base, isolating the combo factor.
	single := mk(1, 9)
	spammed := mk(10, 9)
	if spammed > single/2 {
		t.Errorf("combo 10 count %d exceeds half of combo 1 count %d", spammed, single)
	}
}

// TestMiniBurstFiresExactlyOnce verifies a carrier particle's scheduled
// mini-burst fires on the first update at or past its delay, within the
// 500-800ms window, and never again.
func TestMiniBurstFiresExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	audio := &recordingAudio{}
	fw := &Firework{
		intensity: 1,
		phys:      testPhysics(),
		audio:     audio,
		rng:       rng,
		exploded:  true,
	}
	p := newTestParticle()
	p.Burst = &PendingBurst{Kind: BurstMini, DelayMs: 650, CreatedAtMs: 1000}

	fw.maybeFireBurst(p, 1600)
	if len(fw.secondary) != 0 {
		t.Fatal("burst fired before its delay elapsed")
	}
	fw.maybeFireBurst(p, 1650)
	first := len(fw.secondary)
	if first < 4 || first > 8 {
		t.Errorf("mini-burst spawned %d sparkles, want 4-8", first)
	}
	if p.Burst.DelayMs < 500 || p.Burst.DelayMs > 800 {
		t.Errorf("mini-burst delay %v outside [500, 800]", p.Burst.DelayMs)
	}
	fw.maybeFireBurst(p, 2400)
	if len(fw.secondary) != first {
		t.Error("burst fired a second time")
	}
	if audio.count(CueCrackle) != 1 {
		t.Errorf("crackle cue played %d times, want 1", audio.count(CueCrackle))
	}
}

// TestCrackleCuePlaysOncePerFirework verifies the one-shot guard holds
// across multiple carriers.
func TestCrackleCuePlaysOncePerFirework(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	audio := &recordingAudio{}
	fw := &Firework{
		intensity: 1,
		phys:      testPhysics(),
		audio:     audio,
		rng:       rng,
		exploded:  true,
	}
	a := newTestParticle()
	a.Burst = &PendingBurst{Kind: BurstMini, DelayMs: 500, CreatedAtMs: 0}
	b := newTestParticle()
	b.Burst = &PendingBurst{Kind: BurstSpiral, DelayMs: 700, CreatedAtMs: 0}

	fw.maybeFireBurst(a, 600)
	fw.maybeFireBurst(b, 800)
	if len(fw.secondary) < 7 {
		t.Errorf("expected both bursts to spawn, got %d sparkles", len(fw.secondary))
	}
	if audio.count(CueCrackle) != 1 {
		t.Errorf("crackle cue played %d times, want 1", audio.count(CueCrackle))
	}
}

// TestSpiralBurstSpawnCount verifies the spiral variant spawns 3-6 sparkles.
func TestSpiralBurstSpawnCount(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		fw := &Firework{
			intensity: 1,
			phys:      testPhysics(),
			audio:     NopAudio{},
			rng:       rand.New(rand.NewSource(seed)),
			exploded:  true,
		}
		src := newTestParticle()
		fw.createSpiralBurst(src)
		if n := len(fw.secondary); n < 3 || n > 6 {
			t.Errorf("seed %d: spiral burst spawned %d, want 3-6", seed, n)
		}
	}
}

// TestPickSpriteFallsBack verifies missing texture handles degrade to the
// plain sprite silently.
func TestPickSpriteFallsBack(t *testing.T) {
	fw := &Firework{rng: rand.New(rand.NewSource(5))}
	for i := 0; i < 50; i++ {
		if got := fw.pickSprite(); got != SpriteNone {
			t.Fatalf("pickSprite with no handles = %v, want SpriteNone", got)
		}
	}

	fw = &Firework{rng: rand.New(rand.NewSource(5)), giftSprite: 1, avatarSprite: 2}
	seen := map[SpriteHandle]bool{}
	for i := 0; i < 200; i++ {
		seen[fw.pickSprite()] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("expected both gift and avatar picks, saw %v", seen)
	}
}

// TestFireworkIsDone verifies the spent condition requires explosion and
// secondary sets to drain.
func TestFireworkIsDone(t *testing.T) {
	fw := &Firework{exploded: true}
	if !fw.IsDone() {
		t.Error("exploded firework with no particles not done")
	}
	fw.explosion = []*Particle{newTestParticle()}
	if fw.IsDone() {
		t.Error("firework with live explosion particles reported done")
	}
	fw.explosion = nil
	fw.secondary = []*Particle{newTestParticle()}
	if fw.IsDone() {
		t.Error("firework with live secondary particles reported done")
	}
}

// TestParsePaletteSkipsInvalid verifies unparseable hex entries are dropped
// and an empty result falls back to the default palette.
func TestParsePaletteSkipsInvalid(t *testing.T) {
	got := parsePalette([]string{"#ff0000", "not-a-color", "#00ff00"})
	if len(got) != 2 {
		t.Fatalf("parsePalette kept %d entries, want 2", len(got))
	}
	if got[0].h != 0 {
		t.Errorf("red hue = %v, want 0", got[0].h)
	}
	if got[1].h != 120 {
		t.Errorf("green hue = %v, want 120", got[1].h)
	}

	fallback := parsePalette([]string{"junk"})
	if len(fallback) != 1 || fallback[0] != defaultPalette[0] {
		t.Errorf("invalid-only palette = %v, want default", fallback)
	}
}

// TestBurstDelaysWithinWindows verifies scheduled secondary bursts land in
// their documented delay windows.
func TestBurstDelaysWithinWindows(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fw := newFirework(Trigger{
		X: 0.5, Y: 0.5,
		Shape:      shapes.ShapeBurst,
		Intensity:  2,
		Tier:       TierMassive,
		Combo:      1,
		SkipRocket: true,
	}, common.Vec2{X: 640, Y: 720}, 200, testPhysics(), NopAudio{}, rng)
	fw.Update(16.67, 16.67)

	scheduled := 0
	for _, p := range fw.explosion {
		if p.Burst == nil {
			continue
		}
		scheduled++
		switch p.Burst.Kind {
		case BurstMini:
			if p.Burst.DelayMs < 500 || p.Burst.DelayMs > 800 {
				t.Errorf("mini-burst delay %v outside [500, 800]", p.Burst.DelayMs)
			}
		case BurstSpiral:
			if p.Burst.DelayMs < 600 || p.Burst.DelayMs > 1000 {
				t.Errorf("spiral-burst delay %v outside [600, 1000]", p.Burst.DelayMs)
			}
		}
	}
	if scheduled == 0 {
		t.Error("no secondary bursts scheduled in a massive explosion")
	}
}
