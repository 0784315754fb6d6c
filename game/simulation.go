package game

import (
	"github.com/pthm-cable/pbmpm/systems"
	"github.com/pthm-cable/pbmpm/telemetry"
)

// Step advances the simulation by one tick of dt seconds.
// The stages run strictly in order: integrate, grid transfer, collisions.
func (s *Simulation) Step(dt float64) {
	if dt < 0 {
		dt = 0
	}

	s.perfCollector.StartTick()

	// 1. Gravity, walls and the speed cap
	s.perfCollector.StartPhase(systems.StageIntegrate)
	integ := s.integrator.Update(dt, s.bounds)
	s.collector.RecordIntegration(integ.BouncesX, integ.BouncesY, integ.Rests, integ.Clamps)

	// 2. Rebuild the velocity grid from the moved particles
	s.perfCollector.StartPhase(systems.StageGridTransfer)
	s.lastGrid = s.gridTransfer.Update()

	// 3. Pairwise contacts
	s.perfCollector.StartPhase(systems.StageCollisions)
	coll := s.collisions.Update()
	s.collector.RecordCollisions(coll.PairsChecked, coll.Contacts, coll.Impulses)

	s.tick++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// Grid returns the velocity grid built on the last tick.
func (s *Simulation) Grid() *systems.Grid {
	return s.gridTransfer.Grid()
}

// GridSnapshot returns the current grid cells sorted by coordinate.
func (s *Simulation) GridSnapshot() []systems.CellSnapshot {
	return s.gridTransfer.Grid().Snapshot()
}

// GridStats returns the grid summary from the last tick.
func (s *Simulation) GridStats() systems.GridStats {
	return s.lastGrid
}
