package sim

// Cue identifies one of the sound effects the simulation requests from the
// audio collaborator.
type Cue int

const (
	CueLaunch Cue = iota
	CueExplosion
	CueCrackle
)

// AudioPlayer is the fire-and-forget audio collaborator. Implementations
// must never block the simulation step; a no-op player is a valid fallback.
type AudioPlayer interface {
	// Play queues the given cue at the given volume. Volume is a linear
	// scale where 1.0 is nominal; implementations clamp as needed.
	//
	// Parameters:
	//   - cue: which sound to play
	//   - volume: linear volume scale
	Play(cue Cue, volume float64)
}

// NopAudio discards every cue. Used when no audio player is wired or when
// speaker initialization fails.
type NopAudio struct{}

var _ AudioPlayer = NopAudio{}

// Play implements AudioPlayer by doing nothing.
func (NopAudio) Play(Cue, float64) {}
