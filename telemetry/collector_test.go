package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.1)

	require.Equal(t, int32(10), c.WindowDurationTicks())
	assert.False(t, c.ShouldFlush(9), "should not flush before the window ends")
	assert.True(t, c.ShouldFlush(10), "should flush at the window end")
}

func TestCollectorZeroDT(t *testing.T) {
	c := NewCollector(10, 0)
	assert.Equal(t, int32(1), c.WindowDurationTicks())
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.5)

	c.RecordIntegration(2, 1, 1, 0)
	c.RecordIntegration(1, 0, 0, 3)
	c.RecordCollisions(45, 2, 1)
	c.RecordCollisions(45, 1, 1)

	stats := c.Flush(2, []float64{3, 4}, GridSummary{Cells: 18, Populated: 9, Mass: 5})

	want := WindowStats{
		WindowStartTick: 0,
		WindowEndTick:   2,
		SimTimeSec:      1.0,
		Particles:       2,
		BouncesX:        3,
		BouncesY:        1,
		Rests:           1,
		Clamps:          3,
		PairsChecked:    90,
		Contacts:        3,
		Impulses:        2,
		GridCells:       18,
		GridPopulated:   9,
		GridMass:        5,
	}
	// Speed fields are covered by the stats tests
	stats.SpeedMean, stats.SpeedStd, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = 0, 0, 0, 0, 0
	stats.SpeedMax, stats.KineticEnergy = 0, 0

	assert.Equal(t, want, stats)

	next := c.Flush(4, nil, GridSummary{})
	assert.Equal(t, int32(2), next.WindowStartTick)
	assert.Zero(t, next.BouncesX, "counters reset after flush")
	assert.Zero(t, next.Contacts, "counters reset after flush")
}
