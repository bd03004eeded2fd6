package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestMergeKeepsUnsetFields verifies a partial overlay only replaces the
// fields it names.
func TestMergeKeepsUnsetFields(t *testing.T) {
	cfg := Default()
	cfg.Merge(Config{Gravity: 0.2, MaxParticles: 500})

	if cfg.Gravity != 0.2 {
		t.Errorf("Gravity = %v, want 0.2", cfg.Gravity)
	}
	if cfg.MaxParticles != 500 {
		t.Errorf("MaxParticles = %d, want 500", cfg.MaxParticles)
	}
	if cfg.Drag != Default().Drag {
		t.Errorf("Drag = %v, want default %v", cfg.Drag, Default().Drag)
	}
	if cfg.ApexFraction != Default().ApexFraction {
		t.Errorf("ApexFraction = %v, want default %v", cfg.ApexFraction, Default().ApexFraction)
	}
}

// TestLoadOverlaysFile verifies YAML fields override defaults and absent
// fields keep them.
func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skyburst.yaml")
	if err := os.WriteFile(path, []byte("gravity: 0.12\nmax_particles: 2000\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Gravity != 0.12 {
		t.Errorf("Gravity = %v, want 0.12", cfg.Gravity)
	}
	if cfg.MaxParticles != 2000 {
		t.Errorf("MaxParticles = %d, want 2000", cfg.MaxParticles)
	}
	if cfg.RocketSpeed != Default().RocketSpeed {
		t.Errorf("RocketSpeed = %v, want default", cfg.RocketSpeed)
	}
}

// TestLoadMissingFileReturnsDefaults verifies a read failure still hands back
// usable defaults alongside the error.
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if cfg.MaxParticles != Default().MaxParticles {
		t.Errorf("MaxParticles = %d, want default on error", cfg.MaxParticles)
	}
}
