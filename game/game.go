// Package game wires the particle systems into a tick-driven simulation.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pbmpm/components"
	"github.com/pthm-cable/pbmpm/config"
	"github.com/pthm-cable/pbmpm/systems"
	"github.com/pthm-cable/pbmpm/telemetry"
)

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg   *config.Config
	world *ecs.World

	particleMapper *ecs.Map3[components.Position, components.Velocity, components.Body]
	particleFilter ecs.Filter3[components.Position, components.Velocity, components.Body]

	// Stages, run in this order every tick
	integrator   *systems.IntegratorSystem
	gridTransfer *systems.GridTransferSystem
	collisions   *systems.CollisionSystem
	registry     *systems.SystemRegistry

	bounds systems.Bounds
	dt     float64
	tick   int32

	stepsPerUpdate int
	maxTicks       int32
	logStats       bool
	statsCallback  func(telemetry.WindowStats)

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	lastGrid         systems.GridStats
}

// NewSimulation creates a simulation from cfg and spawns the initial particle ring.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := cellIndexMode(cfg)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	statsWindowSec := opts.StatsWindowSec
	if statsWindowSec <= 0 {
		statsWindowSec = cfg.Telemetry.StatsWindow
	}

	s := &Simulation{
		cfg:              cfg,
		world:            world,
		particleMapper:   ecs.NewMap3[components.Position, components.Velocity, components.Body](world),
		particleFilter:   *ecs.NewFilter3[components.Position, components.Velocity, components.Body](world),
		integrator:       systems.NewIntegratorSystem(world, integratorParams(cfg)),
		gridTransfer:     systems.NewGridTransferSystem(world, cfg.Grid.CellSize, mode, gravity(cfg)),
		collisions:       systems.NewCollisionSystem(world, cfg.Collision.Restitution, broadPhase(cfg)),
		registry:         systems.NewSystemRegistry(),
		bounds:           systems.Bounds{HalfWidth: cfg.World.HalfWidth, HalfHeight: cfg.World.HalfHeight},
		dt:               cfg.Physics.DT,
		stepsPerUpdate:   stepsPerUpdate,
		maxTicks:         opts.MaxTicks,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		collector:        telemetry.NewCollector(statsWindowSec, cfg.Physics.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
	}

	s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		s.outputManager.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s.spawnRing()

	slog.Info("simulation created",
		"particles", s.ParticleCount(),
		"half_width", s.bounds.HalfWidth,
		"half_height", s.bounds.HalfHeight,
		"dt", s.dt,
		"cell_size", cfg.Grid.CellSize,
		"cell_index", cfg.Grid.CellIndex,
		"broad_phase", cfg.Collision.BroadPhase,
		"stages", s.registry.IDs(),
		"output_dir", s.outputManager.Dir(),
	)

	return s, nil
}

// Update runs StepsPerUpdate ticks with the configured time step.
// It never steps past MaxTicks.
func (s *Simulation) Update() {
	for i := 0; i < s.stepsPerUpdate && !s.Done(); i++ {
		s.Step(s.dt)
	}
}

// Done reports whether the tick limit has been reached.
func (s *Simulation) Done() bool {
	return s.maxTicks > 0 && s.tick >= s.maxTicks
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// DT returns the configured seconds per tick.
func (s *Simulation) DT() float64 {
	return s.dt
}

// Close writes the final grid snapshot and closes output files.
func (s *Simulation) Close() error {
	if s.outputManager == nil {
		return nil
	}

	snapshot := s.GridSnapshot()
	rows := make([]telemetry.GridCellCSV, len(snapshot))
	for i, c := range snapshot {
		rows[i] = telemetry.GridCellCSV{X: c.X, Y: c.Y, VX: c.VX, VY: c.VY, Mass: c.Mass}
	}
	gridErr := s.outputManager.WriteGrid(rows)
	closeErr := s.outputManager.Close()
	s.outputManager = nil

	if gridErr != nil {
		return gridErr
	}
	return closeErr
}
