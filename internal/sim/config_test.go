package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_EmbeddedValues(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults must validate: %v", err)
	}
	if cfg.Perception.ViewDistance != 300 {
		t.Errorf("view_distance = %v, want 300", cfg.Perception.ViewDistance)
	}
	if cfg.Perception.FOVDegrees != 120 {
		t.Errorf("fov_degrees = %v, want 120", cfg.Perception.FOVDegrees)
	}
	if cfg.Perception.MemoryDuration != 5.0 {
		t.Errorf("memory_duration = %v, want 5.0", cfg.Perception.MemoryDuration)
	}
	if cfg.Behavior.ChaseLostSightTime != 3.0 {
		t.Errorf("chase_lost_sight_time = %v, want 3.0", cfg.Behavior.ChaseLostSightTime)
	}
	if got, want := cfg.Perception.FOVRadians(), 2*math.Pi/3; math.Abs(got-want) > 1e-9 {
		t.Errorf("FOVRadians() = %v, want %v", got, want)
	}
}

func TestLoadConfig_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("perception:\n  view_distance: 150\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Perception.ViewDistance != 150 {
		t.Errorf("override not applied: view_distance = %v", cfg.Perception.ViewDistance)
	}
	if cfg.Perception.FOVDegrees != 120 {
		t.Errorf("untouched field should keep its default: fov_degrees = %v", cfg.Perception.FOVDegrees)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("perception: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed YAML should error")
	}
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(path, []byte("perception:\n  view_distance: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("out-of-range value should fail validation")
	}
}

func TestConfig_ValidateRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero view distance", func(c *Config) { c.Perception.ViewDistance = 0 }},
		{"fov over 360", func(c *Config) { c.Perception.FOVDegrees = 400 }},
		{"negative memory", func(c *Config) { c.Perception.MemoryDuration = -1 }},
		{"zero wander radius", func(c *Config) { c.Behavior.WanderRadius = 0 }},
		{"zero search radius", func(c *Config) { c.Behavior.SearchRadius = 0 }},
		{"negative grace", func(c *Config) { c.Behavior.ChaseLostSightTime = -1 }},
		{"inverted search range", func(c *Config) { c.Behavior.MinSearchTime = 5; c.Behavior.MaxSearchTime = 2 }},
		{"zero turn rate", func(c *Config) { c.Movement.TurnRate = 0 }},
		{"zero agent radius", func(c *Config) { c.Movement.AgentRadius = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}
