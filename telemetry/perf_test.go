package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/pbmpm/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.StageIntegrate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.StageCollisions)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	assert.Positive(t, stats.AvgTickDuration.Nanoseconds())
	assert.Contains(t, stats.PhaseAvg, systems.StageIntegrate)
	assert.Contains(t, stats.PhaseAvg, systems.StageCollisions)
	assert.LessOrEqual(t, stats.MinTickDuration.Nanoseconds(), stats.AvgTickDuration.Nanoseconds())
	assert.LessOrEqual(t, stats.AvgTickDuration.Nanoseconds(), stats.MaxTickDuration.Nanoseconds())
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.StageGridTransfer)
		pc.EndTick()
	}

	stats := pc.Stats()

	assert.Positive(t, stats.AvgTickDuration.Nanoseconds())
	assert.Greater(t, stats.TicksPerSecond, 0.0)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.StageIntegrate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.StageCollisions)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	assert.Greater(t, stats.PhasePct[systems.StageCollisions], stats.PhasePct[systems.StageIntegrate])

	row := stats.ToCSV(42)
	assert.Equal(t, int32(42), row.WindowEnd)
	assert.Equal(t, stats.PhasePct[systems.StageCollisions], row.CollisionsPct)
	assert.Equal(t, stats.PhasePct[systems.StageIntegrate], row.IntegratePct)
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(0)

	stats := pc.Stats()

	assert.Zero(t, stats.AvgTickDuration)
	require.NotNil(t, stats.PhaseAvg)
	require.NotNil(t, stats.PhasePct)
}
