package sim

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the behavior controller. Defaults are
// embedded; a YAML file can override any subset.
type Config struct {
	Perception PerceptionConfig `yaml:"perception"`
	Movement   MovementConfig   `yaml:"movement"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Target     TargetConfig     `yaml:"target"`
}

// PerceptionConfig tunes the sight model and short-term memory.
type PerceptionConfig struct {
	ViewDistance   float64 `yaml:"view_distance"`
	FOVDegrees     float64 `yaml:"fov_degrees"`
	MemoryDuration float64 `yaml:"memory_duration"`
}

// FOVRadians returns the total vision arc in radians.
func (p PerceptionConfig) FOVRadians() float64 {
	return p.FOVDegrees * math.Pi / 180
}

// MovementConfig tunes locomotion. Speeds are world units per second; each
// behavior state applies its own speed on entry.
type MovementConfig struct {
	AgentRadius float64 `yaml:"agent_radius"`
	TurnRate    float64 `yaml:"turn_rate"`
	WanderSpeed float64 `yaml:"wander_speed"`
	ChaseSpeed  float64 `yaml:"chase_speed"`
	SearchSpeed float64 `yaml:"search_speed"`
	HideSpeed   float64 `yaml:"hide_speed"`
	StalkSpeed  float64 `yaml:"stalk_speed"`
}

// BehaviorConfig tunes the state machine and its timed sub-behaviors.
// Durations are seconds of simulation time.
type BehaviorConfig struct {
	WanderRadius       float64 `yaml:"wander_radius"`
	SearchRadius       float64 `yaml:"search_radius"`
	ChaseLostSightTime float64 `yaml:"chase_lost_sight_time"`
	MinSearchTime      float64 `yaml:"min_search_time"`
	MaxSearchTime      float64 `yaml:"max_search_time"`
	StalkPauseTime     float64 `yaml:"stalk_pause_time"`
	HidePauseTime      float64 `yaml:"hide_pause_time"`
}

// TargetConfig describes the tracked target's bounds and observation frustum.
type TargetConfig struct {
	Radius            float64 `yaml:"radius"`
	FrustumFOVDegrees float64 `yaml:"frustum_fov_degrees"`
	FrustumFar        float64 `yaml:"frustum_far"`
}

// FrustumFOVRadians returns the frustum arc in radians.
func (t TargetConfig) FrustumFOVRadians() float64 {
	return t.FrustumFOVDegrees * math.Pi / 180
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		// The embedded defaults are part of the build; failing to parse them
		// is a programming error, not a runtime condition.
		panic(fmt.Sprintf("sim: embedded defaults.yaml invalid: %v", err))
	}
	return cfg
}

// LoadConfig reads a YAML file layered over the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the ranges the controller depends on.
func (c *Config) Validate() error {
	if c.Perception.ViewDistance <= 0 {
		return fmt.Errorf("perception.view_distance must be > 0, got %v", c.Perception.ViewDistance)
	}
	if c.Perception.FOVDegrees <= 0 || c.Perception.FOVDegrees > 360 {
		return fmt.Errorf("perception.fov_degrees must be in (0, 360], got %v", c.Perception.FOVDegrees)
	}
	if c.Perception.MemoryDuration < 0 {
		return fmt.Errorf("perception.memory_duration must be >= 0, got %v", c.Perception.MemoryDuration)
	}
	if c.Behavior.WanderRadius <= 0 {
		return fmt.Errorf("behavior.wander_radius must be > 0, got %v", c.Behavior.WanderRadius)
	}
	if c.Behavior.SearchRadius <= 0 {
		return fmt.Errorf("behavior.search_radius must be > 0, got %v", c.Behavior.SearchRadius)
	}
	if c.Behavior.ChaseLostSightTime < 0 {
		return fmt.Errorf("behavior.chase_lost_sight_time must be >= 0, got %v", c.Behavior.ChaseLostSightTime)
	}
	if c.Behavior.MinSearchTime < 0 || c.Behavior.MaxSearchTime < c.Behavior.MinSearchTime {
		return fmt.Errorf("behavior search time range [%v, %v] invalid",
			c.Behavior.MinSearchTime, c.Behavior.MaxSearchTime)
	}
	if c.Movement.TurnRate <= 0 {
		return fmt.Errorf("movement.turn_rate must be > 0, got %v", c.Movement.TurnRate)
	}
	if c.Movement.AgentRadius <= 0 {
		return fmt.Errorf("movement.agent_radius must be > 0, got %v", c.Movement.AgentRadius)
	}
	return nil
}
