// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Cell index modes for mapping world positions onto grid cells.
const (
	CellIndexTruncate = "truncate" // round toward zero
	CellIndexFloor    = "floor"    // round toward negative infinity
)

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	World     WorldConfig     `yaml:"world"`
	Grid      GridConfig      `yaml:"grid"`
	Collision CollisionConfig `yaml:"collision"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Vec2 is a two-component vector as written in YAML.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT              float64 `yaml:"dt"`               // Seconds per tick
	Gravity         Vec2    `yaml:"gravity"`          // Acceleration applied every tick
	BounceDampening float64 `yaml:"bounce_dampening"` // Fraction of speed kept after a wall bounce
	RestThreshold   float64 `yaml:"rest_threshold"`   // |vy| below this snaps to 0 after a floor/ceiling bounce
	MaxSpeedFactor  float64 `yaml:"max_speed_factor"` // Speed cap = factor * max(half_width, half_height)
}

// WorldConfig holds the initial world half-extents.
// The host may replace them at runtime on resize.
type WorldConfig struct {
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
}

// GridConfig holds velocity grid parameters.
type GridConfig struct {
	CellSize  float64 `yaml:"cell_size"`
	CellIndex string  `yaml:"cell_index"` // truncate or floor
}

// CollisionConfig holds contact resolution parameters.
type CollisionConfig struct {
	Restitution    float64 `yaml:"restitution"`
	BroadPhase     bool    `yaml:"broad_phase"`      // Use a bucket grid to find candidate pairs
	BroadPhaseCell float64 `yaml:"broad_phase_cell"` // Bucket size (0 = twice the largest radius)
}

// SpawnConfig holds the initial particle ring layout.
type SpawnConfig struct {
	Count         int     `yaml:"count"`
	Radius        float64 `yaml:"radius"`         // Ring radius
	Size          float64 `yaml:"size"`           // Particle diameter
	VelocityStep  float64 `yaml:"velocity_step"`  // vx = (i - count/2) * step
	VerticalSpeed float64 `yaml:"vertical_speed"` // Initial vy of every particle
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	BookmarkHistory     int     `yaml:"bookmark_history"`      // Windows of history for bookmark detection
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects values the physics cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Physics.DT < 0:
		return fmt.Errorf("%w: physics.dt must be >= 0, got %v", ErrInvalid, c.Physics.DT)
	case c.Physics.BounceDampening < 0 || c.Physics.BounceDampening > 1:
		return fmt.Errorf("%w: physics.bounce_dampening must be in [0,1], got %v", ErrInvalid, c.Physics.BounceDampening)
	case c.Physics.RestThreshold < 0:
		return fmt.Errorf("%w: physics.rest_threshold must be >= 0, got %v", ErrInvalid, c.Physics.RestThreshold)
	case c.Physics.MaxSpeedFactor <= 0:
		return fmt.Errorf("%w: physics.max_speed_factor must be > 0, got %v", ErrInvalid, c.Physics.MaxSpeedFactor)
	case c.World.HalfWidth <= 0 || c.World.HalfHeight <= 0:
		return fmt.Errorf("%w: world half extents must be > 0, got %vx%v", ErrInvalid, c.World.HalfWidth, c.World.HalfHeight)
	case c.Grid.CellSize <= 0:
		return fmt.Errorf("%w: grid.cell_size must be > 0, got %v", ErrInvalid, c.Grid.CellSize)
	case c.Grid.CellIndex != CellIndexTruncate && c.Grid.CellIndex != CellIndexFloor:
		return fmt.Errorf("%w: grid.cell_index must be %q or %q, got %q", ErrInvalid, CellIndexTruncate, CellIndexFloor, c.Grid.CellIndex)
	case c.Collision.Restitution < 0 || c.Collision.Restitution > 1:
		return fmt.Errorf("%w: collision.restitution must be in [0,1], got %v", ErrInvalid, c.Collision.Restitution)
	case c.Collision.BroadPhaseCell < 0:
		return fmt.Errorf("%w: collision.broad_phase_cell must be >= 0, got %v", ErrInvalid, c.Collision.BroadPhaseCell)
	case c.Spawn.Count < 0:
		return fmt.Errorf("%w: spawn.count must be >= 0, got %d", ErrInvalid, c.Spawn.Count)
	case c.Spawn.Size <= 0:
		return fmt.Errorf("%w: spawn.size must be > 0, got %v", ErrInvalid, c.Spawn.Size)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
