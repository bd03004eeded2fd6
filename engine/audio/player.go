package audio

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/sim"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// player is the implementation of the Player interface.
// Synthesizes every cue on the fly; no sample assets are shipped.
type player struct {
	mu    sync.Mutex
	mixer *beep.Mixer
	seed  int64
}

// Player is the speaker-backed audio collaborator for the simulation.
// All cues are fire-and-forget: Play hands a short synthesized streamer to the
// mixer and returns immediately.
type Player interface {
	sim.AudioPlayer

	// Close silences the mixer and shuts down the speaker.
	Close()
}

var _ Player = &player{}

// NewPlayer initializes the speaker and returns a Player that synthesizes
// firework cues. If speaker initialization fails (no audio device, headless
// host), the error is logged and a silent no-op player is returned so the
// display keeps running without sound.
//
// Returns:
//   - sim.AudioPlayer: the speaker-backed player, or a no-op fallback
func NewPlayer() sim.AudioPlayer {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		log.Printf("audio: speaker init failed, running silent: %v", err)
		return sim.NopAudio{}
	}

	p := &player{
		mixer: &beep.Mixer{},
		seed:  time.Now().UnixNano() & 0x7fffffff,
	}
	speaker.Play(p.mixer)
	return p
}

// Play synthesizes the requested cue and adds it to the live mixer.
// Volume is linear with 1.0 nominal; values are clamped to [0, 1] and mapped
// onto the effects.Volume logarithmic scale.
//
// Parameters:
//   - cue: which sound to play
//   - volume: linear volume scale
func (p *player) Play(cue sim.Cue, volume float64) {
	volume = common.Clamp(volume, 0, 1)

	p.mu.Lock()
	p.seed = (p.seed*1103515245 + 12345) & 0x7fffffff
	seed := p.seed
	p.mu.Unlock()

	var gen beep.Streamer
	var duration time.Duration
	switch cue {
	case sim.CueLaunch:
		gen = &launchGen{seed: seed}
		duration = 600 * time.Millisecond
	case sim.CueExplosion:
		gen = &explosionGen{seed: seed}
		duration = 900 * time.Millisecond
	case sim.CueCrackle:
		gen = &crackleGen{seed: seed}
		duration = 700 * time.Millisecond
	default:
		return
	}

	shot := &effects.Volume{
		Streamer: beep.Take(sampleRate.N(duration), gen),
		Base:     2,
		Volume:   math.Log2(math.Max(volume, 1e-4)),
		Silent:   volume <= 0,
	}

	speaker.Lock()
	p.mixer.Add(shot)
	speaker.Unlock()
}

// Close silences the mixer and shuts down the speaker.
func (p *player) Close() {
	speaker.Clear()
	speaker.Close()
}

// nextNoise advances a linear congruential generator and maps the state onto
// [-1, 1]. Cheap enough to call per sample.
func nextNoise(seed *int64) float64 {
	*seed = (*seed*1103515245 + 12345) & 0x7fffffff
	return float64(*seed)/float64(0x7fffffff)*2 - 1
}

// launchGen is a rocket whoosh: band-limited noise swelling in and tailing
// off, under a sine sweep rising from 180 Hz to 900 Hz.
type launchGen struct {
	pos  int
	seed int64
	prev float64
}

func (g *launchGen) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)

		// Swell: fast attack, slow release.
		env := math.Min(t*8, 1) * math.Exp(-t*3)

		// One-pole lowpass over white noise keeps the hiss breathy.
		g.prev += 0.18 * (nextNoise(&g.seed) - g.prev)
		noise := g.prev * 1.6

		freq := 180 + 720*math.Min(t*2, 1)
		sweep := 0.35 * math.Sin(2*math.Pi*freq*t)

		v := env * (noise + sweep)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *launchGen) Err() error { return nil }

// explosionGen is the burst report: a hard noise transient with exponential
// decay over a decaying 60 Hz thump.
type explosionGen struct {
	pos  int
	seed int64
}

func (g *explosionGen) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)

		env := math.Exp(-t * 8)
		noise := nextNoise(&g.seed) * env

		thump := 0.6 * math.Sin(2*math.Pi*60*t) * math.Exp(-t*12)

		v := noise + thump
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *explosionGen) Err() error { return nil }

// crackleGen is the spark tail: sparse noise pops gated by the generator
// state, fading out with the same decay the spark envelopes use.
type crackleGen struct {
	pos  int
	seed int64
	hold float64
	gate int
}

func (g *crackleGen) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)

		// Each pop holds one noise value for a short random burst, then goes
		// silent until the generator opens the gate again.
		if g.gate <= 0 {
			if nextNoise(&g.seed) > 0.995 {
				g.hold = nextNoise(&g.seed)
				g.gate = 40 + int(math.Abs(nextNoise(&g.seed))*160)
			} else {
				g.hold = 0
			}
		} else {
			g.gate--
		}

		env := math.Exp(-t * 4)
		v := g.hold * env
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *crackleGen) Err() error { return nil }
