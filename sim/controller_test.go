package sim

import (
	"math/rand"
	"testing"

	"github.com/aurora-fx/skyburst/config"
	"github.com/aurora-fx/skyburst/sim/shapes"
)

func newTestController(audio AudioPlayer, seed int64) *Controller {
	return NewController(config.Default(), audio, rand.New(rand.NewSource(seed)))
}

// TestAddFireworkSingleTrigger verifies one trigger produces exactly one
// active firework and plays the launch cue.
func TestAddFireworkSingleTrigger(t *testing.T) {
	audio := &recordingAudio{}
	c := newTestController(audio, 1)
	c.AddFirework(Trigger{
		X: 0.5, Y: 0.5,
		Shape:     shapes.ShapeBurst,
		Intensity: 1,
		Tier:      TierMedium,
		Combo:     1,
	})
	if c.ActiveCount() != 1 {
		t.Fatalf("active fireworks = %d, want 1", c.ActiveCount())
	}
	if audio.count(CueLaunch) != 1 {
		t.Errorf("launch cue played %d times, want 1", audio.count(CueLaunch))
	}
}

// TestSkipRocketSuppressesLaunchCue verifies rocketless triggers stay
// silent at launch.
func TestSkipRocketSuppressesLaunchCue(t *testing.T) {
	audio := &recordingAudio{}
	c := newTestController(audio, 1)
	c.AddFirework(Trigger{X: 0.5, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 1, Tier: TierMedium, Combo: 1, SkipRocket: true})
	if audio.count(CueLaunch) != 0 {
		t.Errorf("launch cue played %d times for skipRocket trigger, want 0", audio.count(CueLaunch))
	}
}

// TestApexCorrection verifies a trigger whose apex lands at or below the
// launch baseline is corrected to the default fraction before the firework
// is built.
func TestApexCorrection(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name string
		y    float64
	}{
		{"apex at baseline", 0},
		{"apex below baseline", -0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(nil, 2)
			c.AddFirework(Trigger{X: 0.5, Y: tt.y, Shape: shapes.ShapeBurst, Intensity: 1, Tier: TierMedium, Combo: 1})
			fw := c.fireworks[0]
			want := cfg.PlayfieldHeight * (1 - cfg.ApexFraction)
			if fw.apexY != want {
				t.Errorf("apexY = %v, want corrected %v", fw.apexY, want)
			}
		})
	}
}

// TestTickFlattensLiveParticles verifies Tick returns the union of rocket,
// explosion, and secondary particles, and prunes spent fireworks.
func TestTickFlattensLiveParticles(t *testing.T) {
	c := newTestController(nil, 3)
	c.AddFirework(Trigger{X: 0.5, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 1, Tier: TierMedium, Combo: 1})

	live := c.Tick(16.67)
	if len(live) != 1 {
		t.Fatalf("ascending firework exposed %d particles, want 1 rocket", len(live))
	}
	if live[0].Kind != KindRocket {
		t.Errorf("live particle kind = %v, want rocket", live[0].Kind)
	}

	for i := 0; i < 400 && !c.fireworks[0].Exploded(); i++ {
		live = c.Tick(16.67)
	}
	if len(live) < 28 {
		t.Fatalf("exploded population %d, want the primary explosion set", len(live))
	}

	for i := 0; i < 3000 && c.ActiveCount() > 0; i++ {
		c.Tick(16.67)
	}
	if c.ActiveCount() != 0 {
		t.Error("spent firework never pruned")
	}
	if len(c.Tick(16.67)) != 0 {
		t.Error("pruned controller still exposes particles")
	}
}

// TestFinaleStagger verifies a count-5 finale launches exactly 5 fireworks
// spaced by the configured stagger, each with a randomized horizontal
// position and an apex in the top band of the playfield.
func TestFinaleStagger(t *testing.T) {
	cfg := config.Default()
	c := newTestController(nil, 4)
	c.HandleFinale(Finale{
		Count: 5,
		Trigger: Trigger{
			Shape:     shapes.ShapeRing,
			Intensity: 1,
			Tier:      TierMedium,
			Combo:     1,
		},
	})
	if c.ActiveCount() != 0 {
		t.Fatal("finale launched before any tick")
	}

	launched := map[int]bool{}
	for step := 0; step < 70; step++ {
		c.Tick(16.67)
		launched[c.ActiveCount()] = true
	}
	if c.ActiveCount() != 5 {
		t.Fatalf("active fireworks after 70 ticks = %d, want 5", c.ActiveCount())
	}
	// Stagger means the count passes through each intermediate value
	// rather than jumping to 5 at once.
	for n := 1; n <= 5; n++ {
		if !launched[n] {
			t.Errorf("active count never passed through %d; stagger not applied", n)
		}
	}

	apexBand := cfg.PlayfieldHeight * (1 - 0.8)
	for i, fw := range c.fireworks {
		if fw.apexY < 0 || fw.apexY > apexBand {
			t.Errorf("finale firework %d apexY = %v, want within [0, %v]", i, fw.apexY, apexBand)
		}
		if fw.launch.X < 0 || fw.launch.X > cfg.PlayfieldWidth {
			t.Errorf("finale firework %d launch X = %v outside playfield", i, fw.launch.X)
		}
	}
}

// TestSetConfigAffectsNewFireworksOnly verifies a live merge changes the
// constants captured by fireworks created afterwards.
func TestSetConfigAffectsNewFireworksOnly(t *testing.T) {
	c := newTestController(nil, 5)
	c.AddFirework(Trigger{X: 0.5, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 1, Tier: TierMedium, Combo: 1})

	cfg := c.Config()
	cfg.Merge(config.Config{Gravity: 0.5})
	c.SetConfig(cfg)
	c.AddFirework(Trigger{X: 0.6, Y: 0.5, Shape: shapes.ShapeBurst, Intensity: 1, Tier: TierMedium, Combo: 1})

	if got := c.fireworks[0].phys.gravity; got != config.Default().Gravity {
		t.Errorf("pre-merge firework gravity = %v, want %v", got, config.Default().Gravity)
	}
	if got := c.fireworks[1].phys.gravity; got != 0.5 {
		t.Errorf("post-merge firework gravity = %v, want 0.5", got)
	}
}

// TestTickAdvancesSimTime verifies time accumulates from explicit deltas.
func TestTickAdvancesSimTime(t *testing.T) {
	c := newTestController(nil, 6)
	c.Tick(16)
	c.Tick(16)
	if c.TimeMs() != 32 {
		t.Errorf("TimeMs = %v, want 32", c.TimeMs())
	}
}
