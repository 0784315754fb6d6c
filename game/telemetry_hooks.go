package game

import (
	"log/slog"

	"github.com/pthm-cable/pbmpm/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sampleSpeeds(), telemetry.GridSummary{
		Cells:     s.lastGrid.Cells,
		Populated: s.lastGrid.Populated,
		Mass:      s.lastGrid.TotalMass,
	})
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		slog.Info("stats", "window", stats)
		slog.Info("perf", "window", perfStats)
		s.logStagePerf(perfStats)
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sampleSpeeds collects the current speed of every particle.
func (s *Simulation) sampleSpeeds() []float64 {
	var speeds []float64
	query := s.particleFilter.Query()
	for query.Next() {
		_, vel, _ := query.Get()
		speeds = append(speeds, vel.Speed())
	}
	return speeds
}

// logStagePerf logs the average time of each stage under its display name.
func (s *Simulation) logStagePerf(perf telemetry.PerfStats) {
	for _, id := range s.registry.IDs() {
		slog.Info("stage perf",
			"stage", s.registry.GetName(id),
			"avg_us", perf.PhaseAvg[id].Microseconds(),
			"pct", perf.PhasePct[id],
		)
	}
}
