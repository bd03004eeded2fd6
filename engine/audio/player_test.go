package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
)

// streamAll drains n samples from a streamer and returns the per-block peak
// amplitudes so tests can reason about envelopes.
func streamAll(t *testing.T, s beep.Streamer, blocks, blockSize int) []float64 {
	t.Helper()
	peaks := make([]float64, 0, blocks)
	buf := make([][2]float64, blockSize)
	for i := 0; i < blocks; i++ {
		n, ok := s.Stream(buf)
		if !ok || n != blockSize {
			t.Fatalf("block %d: Stream returned n=%d ok=%v, want %d true", i, n, ok, blockSize)
		}
		peak := 0.0
		for _, frame := range buf {
			if a := math.Abs(frame[0]); a > peak {
				peak = a
			}
		}
		peaks = append(peaks, peak)
	}
	return peaks
}

func TestExplosionEnvelopeDecays(t *testing.T) {
	gen := &explosionGen{seed: 12345}
	// 20 blocks of 2400 samples = 1 second at 48 kHz.
	peaks := streamAll(t, gen, 20, 2400)

	if peaks[0] < 0.2 {
		t.Fatalf("explosion attack peak %.3f, want a hard transient above 0.2", peaks[0])
	}
	if peaks[19] > peaks[0]*0.05 {
		t.Fatalf("explosion tail peak %.4f has not decayed below 5%% of attack %.3f", peaks[19], peaks[0])
	}
}

func TestLaunchSwellsBeforeFading(t *testing.T) {
	gen := &launchGen{seed: 98765}
	peaks := streamAll(t, gen, 12, 2400) // 600ms

	first, mid, last := peaks[0], peaks[3], peaks[11]
	if mid <= first {
		t.Fatalf("launch should swell: first block peak %.3f, mid %.3f", first, mid)
	}
	if last >= mid {
		t.Fatalf("launch should tail off: mid block peak %.3f, last %.3f", mid, last)
	}
}

func TestCrackleIsSparse(t *testing.T) {
	gen := &crackleGen{seed: 4242}
	buf := make([][2]float64, 48000*7/10) // full 700ms cue
	if n, ok := gen.Stream(buf); !ok || n != len(buf) {
		t.Fatalf("Stream returned n=%d ok=%v", n, ok)
	}

	silent := 0
	for _, frame := range buf {
		if frame[0] == 0 {
			silent++
		}
	}
	// Pops are gated; most of the cue is silence between them.
	if ratio := float64(silent) / float64(len(buf)); ratio < 0.5 {
		t.Fatalf("crackle silence ratio %.2f, want mostly silent between pops", ratio)
	}
}

func TestGeneratorsReportNoError(t *testing.T) {
	for _, s := range []beep.Streamer{&launchGen{seed: 1}, &explosionGen{seed: 1}, &crackleGen{seed: 1}} {
		if err := s.Err(); err != nil {
			t.Fatalf("Err() = %v, want nil", err)
		}
	}
}
