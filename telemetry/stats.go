// Package telemetry provides windowed simulation statistics, timing and CSV output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Integrator events during window
	BouncesX int `csv:"bounces_x"`
	BouncesY int `csv:"bounces_y"`
	Rests    int `csv:"rests"`
	Clamps   int `csv:"clamps"`

	// Collision events during window
	PairsChecked int `csv:"pairs_checked"`
	Contacts     int `csv:"contacts"`
	Impulses     int `csv:"impulses"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Kinetic energy with unit mass per particle
	KineticEnergy float64 `csv:"kinetic_energy"`

	// Grid state at window end
	GridCells     int     `csv:"grid_cells"`
	GridPopulated int     `csv:"grid_populated"`
	GridMass      float64 `csv:"grid_mass"`
}

// SpeedStats summarizes a set of particle speeds.
type SpeedStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
	Kinetic       float64 // sum of v^2/2
}

// ComputeSpeedStats calculates the distribution of the given speeds.
// The input slice is not modified.
func ComputeSpeedStats(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	var s SpeedStats
	s.Mean, s.Std = stat.PopMeanStdDev(sorted, nil)
	s.P10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	s.Max = floats.Max(sorted)
	s.Kinetic = 0.5 * floats.Dot(sorted, sorted)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("bounces_x", s.BouncesX),
		slog.Int("bounces_y", s.BouncesY),
		slog.Int("rests", s.Rests),
		slog.Int("clamps", s.Clamps),
		slog.Int("pairs_checked", s.PairsChecked),
		slog.Int("contacts", s.Contacts),
		slog.Int("impulses", s.Impulses),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Int("grid_cells", s.GridCells),
		slog.Int("grid_populated", s.GridPopulated),
		slog.Float64("grid_mass", s.GridMass),
	)
}
