package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/pbmpm/config"
	"github.com/pthm-cable/pbmpm/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, grid snapshot and config snapshot")
	maxTicks := flag.Int("max-ticks", 600, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call")
	dt := flag.Float64("dt", 0, "Seconds per tick (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *dt > 0 {
		cfg.Physics.DT = *dt
	}

	opts := game.Options{
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
		MaxTicks:       int32(*maxTicks),
	}

	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"dt", sim.DT(),
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
	)

	for !sim.Done() {
		sim.Update()
	}
	slog.Info("max ticks reached", "tick", sim.Tick())

	if err := sim.Close(); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}
