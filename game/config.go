package game

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/pbmpm/config"
	"github.com/pthm-cable/pbmpm/systems"
	"github.com/pthm-cable/pbmpm/telemetry"
)

// Options configures a simulation beyond what config.Config covers.
type Options struct {
	LogStats       bool                        // Log window stats and perf via slog
	StatsWindowSec float64                     // Stats window in simulated seconds (0 = use config)
	OutputDir      string                      // CSV and config snapshot directory (empty = disabled)
	StepsPerUpdate int                         // Ticks per Update call (0 = 1)
	MaxTicks       int32                       // Stop stepping at this tick (0 = unlimited)
	StatsCallback  func(telemetry.WindowStats) // Called after each stats window flush
}

// gravity returns the configured gravity as a vector.
func gravity(cfg *config.Config) r2.Vec {
	return r2.Vec{X: cfg.Physics.Gravity.X, Y: cfg.Physics.Gravity.Y}
}

// integratorParams maps the physics section onto the integrator constants.
func integratorParams(cfg *config.Config) systems.IntegratorParams {
	return systems.IntegratorParams{
		Gravity:         gravity(cfg),
		BounceDampening: cfg.Physics.BounceDampening,
		RestThreshold:   cfg.Physics.RestThreshold,
		MaxSpeedFactor:  cfg.Physics.MaxSpeedFactor,
	}
}

// cellIndexMode parses the configured grid cell index rule.
func cellIndexMode(cfg *config.Config) (systems.CellIndexMode, error) {
	mode, ok := systems.ParseCellIndexMode(cfg.Grid.CellIndex)
	if !ok {
		return 0, fmt.Errorf("%w: unknown grid.cell_index %q", config.ErrInvalid, cfg.Grid.CellIndex)
	}
	return mode, nil
}

// broadPhase returns the configured broad phase, or nil for brute force pairs.
func broadPhase(cfg *config.Config) *systems.BroadPhase {
	if !cfg.Collision.BroadPhase {
		return nil
	}
	return systems.NewBroadPhase(cfg.Collision.BroadPhaseCell)
}
