package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Physics Physics `yaml:"physics" toml:"physics"`
	Logging Logging `yaml:"logging" toml:"logging"`
	Sandbox Sandbox `yaml:"sandbox" toml:"sandbox"`
}

// Physics tunes the Chipmunk space owned by a simulation.
type Physics struct {
	GravityX   float64 `yaml:"gravity_x" toml:"gravity_x"`
	GravityY   float64 `yaml:"gravity_y" toml:"gravity_y"`
	Iterations uint    `yaml:"iterations" toml:"iterations"`
	Damping    float64 `yaml:"damping" toml:"damping"`
	TimeStep   float64 `yaml:"time_step" toml:"time_step"` // seconds per fixed step
	MaxSteps   int     `yaml:"max_steps" toml:"max_steps"` // fixed steps allowed per frame
}

type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

type Sandbox struct {
	Width       int     `yaml:"width" toml:"width"`
	Height      int     `yaml:"height" toml:"height"`
	Enemies     int     `yaml:"enemies" toml:"enemies"`
	SpawnPeriod int     `yaml:"spawn_period" toml:"spawn_period"` // frames between generator spawns
	DamageRules string  `yaml:"damage_rules" toml:"damage_rules"` // path to a tengo script, empty for the built-in rules
	BulletSpeed float64 `yaml:"bullet_speed" toml:"bullet_speed"`
}

// Default returns a configuration that works without any file.
func Default() Config {
	return Config{
		Physics: Physics{
			GravityY:   900,
			Iterations: 20,
			Damping:    1,
			TimeStep:   1.0 / 60.0,
			MaxSteps:   4,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Sandbox: Sandbox{
			Width:       1280,
			Height:      720,
			Enemies:     6,
			SpawnPeriod: 180,
			BulletSpeed: 600,
		},
	}
}

// Load reads a YAML or TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.Sandbox.Width <= 0 || c.Sandbox.Height <= 0 {
		return fmt.Errorf("sandbox: size must be positive, got %dx%d", c.Sandbox.Width, c.Sandbox.Height)
	}
	if c.Sandbox.Enemies < 0 {
		return fmt.Errorf("sandbox.enemies: must not be negative")
	}
	return nil
}

func (p Physics) Validate() error {
	if p.Iterations == 0 {
		return fmt.Errorf("physics.iterations: must be positive")
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("physics.time_step: must be positive, got %v", p.TimeStep)
	}
	if p.Damping <= 0 || p.Damping > 1 {
		return fmt.Errorf("physics.damping: must be in (0, 1], got %v", p.Damping)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("physics.max_steps: must be positive")
	}
	return nil
}
