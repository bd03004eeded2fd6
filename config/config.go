// package config holds the tunable constants for the firework simulation and
// display. Values load from YAML and can be merged live; the engine applies
// merged values at the next frame boundary.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every runtime-tunable scalar for the simulation and the
// GPU display. The zero value is not usable; start from Default().
type Config struct {
	// Gravity is the downward acceleration applied per step, in pixels per
	// step squared. Positive values pull particles toward the bottom edge.
	Gravity float64 `yaml:"gravity"`

	// Drag is the per-step velocity retention factor. 1.0 means no drag;
	// values below 1.0 slow particles each step.
	Drag float64 `yaml:"drag"`

	// RocketSpeed is the base upward launch speed in pixels per step.
	RocketSpeed float64 `yaml:"rocket_speed"`

	// MaxParticles is the GPU particle buffer capacity. The buffer is
	// allocated once at startup and never resized.
	MaxParticles int `yaml:"max_particles"`

	// PlayfieldWidth and PlayfieldHeight are the simulation bounds in
	// pixels. Trigger positions arrive normalized and scale by these.
	PlayfieldWidth  float64 `yaml:"playfield_width"`
	PlayfieldHeight float64 `yaml:"playfield_height"`

	// ApexFraction is the default explosion height as a fraction of the
	// playfield height above the bottom edge. Used when a trigger's apex
	// is at or below its launch baseline.
	ApexFraction float64 `yaml:"apex_fraction"`

	// FinaleStaggerMs is the launch spacing between finale fireworks, in
	// milliseconds of simulation time.
	FinaleStaggerMs float64 `yaml:"finale_stagger_ms"`
}

// Default returns the configuration used when no file or overrides are
// supplied.
//
// Returns:
//   - Config: the documented default values
func Default() Config {
	return Config{
		Gravity:         0.08,
		Drag:            0.985,
		RocketSpeed:     9.0,
		MaxParticles:    10000,
		PlayfieldWidth:  1280,
		PlayfieldHeight: 720,
		ApexFraction:    0.85,
		FinaleStaggerMs: 200,
	}
}

// Load reads a YAML config file and merges it over the defaults. Fields
// absent from the file keep their default values.
//
// Parameters:
//   - path: filesystem path to the YAML file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Merge(overlay)
	return cfg, nil
}

// Merge shallow-merges the non-zero scalar fields of overlay into c. Zero
// values in overlay leave the corresponding field untouched, so a partial
// live update only changes what it names.
//
// Parameters:
//   - overlay: partial configuration whose non-zero fields win
func (c *Config) Merge(overlay Config) {
	if overlay.Gravity != 0 {
		c.Gravity = overlay.Gravity
	}
	if overlay.Drag != 0 {
		c.Drag = overlay.Drag
	}
	if overlay.RocketSpeed != 0 {
		c.RocketSpeed = overlay.RocketSpeed
	}
	if overlay.MaxParticles != 0 {
		c.MaxParticles = overlay.MaxParticles
	}
	if overlay.PlayfieldWidth != 0 {
		c.PlayfieldWidth = overlay.PlayfieldWidth
	}
	if overlay.PlayfieldHeight != 0 {
		c.PlayfieldHeight = overlay.PlayfieldHeight
	}
	if overlay.ApexFraction != 0 {
		c.ApexFraction = overlay.ApexFraction
	}
	if overlay.FinaleStaggerMs != 0 {
		c.FinaleStaggerMs = overlay.FinaleStaggerMs
	}
}
