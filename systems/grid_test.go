package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/pbmpm/components"
)

func TestQuadraticWeights(t *testing.T) {
	for f := -0.5; f <= 0.5; f += 0.05 {
		w := QuadraticWeights(f)
		assert.InDelta(t, 1.0, w[0]+w[1]+w[2], 1e-12, "f=%v", f)
		for i, wi := range w {
			assert.GreaterOrEqual(t, wi, 0.0, "f=%v w[%d]", f, i)
		}
	}

	w := QuadraticWeights(0)
	assert.Equal(t, [3]float64{0.125, 0.75, 0.125}, w)
}

func TestWorldToCell(t *testing.T) {
	tests := []struct {
		name string
		mode CellIndexMode
		pos  r2.Vec
		want CellCoord
	}{
		{"truncate positive", CellIndexTruncate, r2.Vec{X: 45, Y: 61}, CellCoord{2, 3}},
		{"truncate negative biases toward zero", CellIndexTruncate, r2.Vec{X: -6, Y: -25}, CellCoord{0, -1}},
		{"floor positive", CellIndexFloor, r2.Vec{X: 45, Y: 61}, CellCoord{2, 3}},
		{"floor negative", CellIndexFloor, r2.Vec{X: -6, Y: -25}, CellCoord{-1, -2}},
		{"exact boundary", CellIndexFloor, r2.Vec{X: -20, Y: 20}, CellCoord{-1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(20, tt.mode)
			assert.Equal(t, tt.want, g.WorldToCell(tt.pos))
		})
	}
}

func TestParseCellIndexMode(t *testing.T) {
	m, ok := ParseCellIndexMode("floor")
	assert.True(t, ok)
	assert.Equal(t, CellIndexFloor, m)

	m, ok = ParseCellIndexMode("truncate")
	assert.True(t, ok)
	assert.Equal(t, CellIndexTruncate, m)

	_, ok = ParseCellIndexMode("nearest")
	assert.False(t, ok)
}

func TestScatterCellCentre(t *testing.T) {
	g := NewGrid(20, CellIndexTruncate)
	vel := r2.Vec{X: 3, Y: 4} // speed 5

	g.Scatter(r2.Vec{X: 40, Y: 60}, vel)

	require.Equal(t, 9, g.Len())
	assert.InDelta(t, 5.0, g.TotalMass(), 1e-12, "weights sum to one")

	centre, ok := g.Cell(2, 3)
	require.True(t, ok)
	assert.InDelta(t, 0.75*0.75*5, centre.Mass, 1e-12)
	assert.InDelta(t, 0.75*0.75*3, centre.Velocity.X, 1e-12)
	assert.InDelta(t, 0.75*0.75*4, centre.Velocity.Y, 1e-12)

	edge, ok := g.Cell(1, 3)
	require.True(t, ok)
	assert.InDelta(t, 0.125*0.75*5, edge.Mass, 1e-12)

	corner, ok := g.Cell(3, 4)
	require.True(t, ok)
	assert.InDelta(t, 0.125*0.125*5, corner.Mass, 1e-12)

	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			c, ok := g.Cell(2+dx, 3+dy)
			require.True(t, ok)
			assert.Greater(t, c.Mass, 0.0)
		}
	}

	_, ok = g.Cell(4, 3)
	assert.False(t, ok, "cells outside the 3x3 footprint are absent")
}

func TestScatterMomentumWeighting(t *testing.T) {
	g := NewGrid(20, CellIndexTruncate)
	g.Scatter(r2.Vec{X: 40, Y: 60}, r2.Vec{X: 3, Y: 4})
	g.Scatter(r2.Vec{X: 40, Y: 60}, r2.Vec{X: -6, Y: -8})

	centre, _ := g.Cell(2, 3)
	// Mass adds speeds, velocity adds vectors
	assert.InDelta(t, 0.5625*15, centre.Mass, 1e-12)
	assert.InDelta(t, 0.5625*-3, centre.Velocity.X, 1e-12)
	assert.InDelta(t, 0.5625*-4, centre.Velocity.Y, 1e-12)
}

func TestScatterStationaryParticleLeavesEmptyCells(t *testing.T) {
	g := NewGrid(20, CellIndexTruncate)
	g.Scatter(r2.Vec{X: 10, Y: 10}, r2.Vec{})
	g.Finalize(r2.Vec{X: 0, Y: -9.8})

	assert.Equal(t, 9, g.Len(), "touched cells exist even with zero mass")
	assert.Equal(t, 0, g.Populated())

	c, ok := g.Cell(0, 0)
	require.True(t, ok)
	assert.Equal(t, GridCell{}, c, "gravity only applies to populated cells")
}

func TestScatterFarEdgeNegativeMass(t *testing.T) {
	gravity := r2.Vec{X: 0, Y: -9.8}
	vel := r2.Vec{X: 3, Y: 4}
	g := NewGrid(20, CellIndexTruncate)

	// Offset 0.95 in both axes makes the centre weight negative
	g.Scatter(r2.Vec{X: 19, Y: 19}, vel)
	w := QuadraticWeights(0.95)
	require.Less(t, w[1], 0.0)

	var negative []CellCoord
	for _, c := range g.Snapshot() {
		if c.Mass < 0 {
			negative = append(negative, CellCoord{X: c.X, Y: c.Y})
		}
	}
	assert.Equal(t, []CellCoord{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}, negative)

	edge, ok := g.Cell(1, 0)
	require.True(t, ok)
	assert.InDelta(t, w[2]*w[1]*5, edge.Mass, 1e-12)
	assert.InDelta(t, -0.8016, edge.Mass, 1e-4)

	// Weights still sum to one, so total mass is the particle speed
	assert.InDelta(t, 5.0, g.TotalMass(), 1e-12)
	assert.Equal(t, 9, g.Len())
	assert.Equal(t, 5, g.Populated())

	g.Finalize(gravity)

	// Negative-mass cells keep their raw accumulated velocity
	edge, _ = g.Cell(1, 0)
	assert.InDelta(t, w[2]*w[1]*vel.X, edge.Velocity.X, 1e-12)
	assert.InDelta(t, w[2]*w[1]*vel.Y, edge.Velocity.Y, 1e-12)

	// Positive cells are blended and biased by gravity
	corner, _ := g.Cell(1, 1)
	wc := w[2] * w[2]
	assert.InDelta(t, 0.5*wc*vel.X+gravity.X, corner.Velocity.X, 1e-12)
	assert.InDelta(t, 0.5*wc*vel.Y+gravity.Y, corner.Velocity.Y, 1e-12)
}

func TestFinalizeSmoothsWithPreviousTick(t *testing.T) {
	gravity := r2.Vec{X: 0, Y: -9.8}
	vel := r2.Vec{X: 3, Y: 4}
	g := NewGrid(20, CellIndexTruncate)

	g.Clear()
	g.Scatter(r2.Vec{X: 40, Y: 60}, vel)
	g.Finalize(gravity)

	first, _ := g.Cell(2, 3)
	wantFirst := r2.Add(r2.Scale(0.5*0.5625, vel), gravity)
	assert.InDelta(t, wantFirst.X, first.Velocity.X, 1e-12)
	assert.InDelta(t, wantFirst.Y, first.Velocity.Y, 1e-12)

	g.Clear()
	prev, ok := g.Previous(2, 3)
	require.True(t, ok)
	assert.Equal(t, first.Velocity, prev)
	assert.Equal(t, 0, g.Len())

	g.Scatter(r2.Vec{X: 40, Y: 60}, vel)
	g.Finalize(gravity)

	second, _ := g.Cell(2, 3)
	wantSecond := r2.Add(r2.Scale(0.5, r2.Add(r2.Scale(0.5625, vel), wantFirst)), gravity)
	assert.InDelta(t, wantSecond.X, second.Velocity.X, 1e-12)
	assert.InDelta(t, wantSecond.Y, second.Velocity.Y, 1e-12)
}

func TestClearDropsStalePrevious(t *testing.T) {
	g := NewGrid(20, CellIndexTruncate)
	g.Scatter(r2.Vec{X: 40, Y: 60}, r2.Vec{X: 1})
	g.Clear()
	g.Scatter(r2.Vec{X: -200, Y: -200}, r2.Vec{X: 1})
	g.Clear()

	_, ok := g.Previous(2, 3)
	assert.False(t, ok, "previous only holds the last tick")
	_, ok = g.Previous(-10, -10)
	assert.True(t, ok)
}

func TestSnapshotSorted(t *testing.T) {
	g := NewGrid(20, CellIndexFloor)
	g.Scatter(r2.Vec{X: 100, Y: -100}, r2.Vec{X: 1})
	g.Scatter(r2.Vec{X: -100, Y: 100}, r2.Vec{X: 1})

	snap := g.Snapshot()
	require.Len(t, snap, 18)
	for i := 1; i < len(snap); i++ {
		prev, cur := snap[i-1], snap[i]
		assert.True(t, prev.X < cur.X || (prev.X == cur.X && prev.Y < cur.Y), "snapshot out of order at %d", i)
	}
}

func TestGridTransferSystemUpdate(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap3[components.Position, components.Velocity, components.Body](w)
	body := components.BodyFromSize(5)
	mapper.NewEntity(&components.Position{X: 40, Y: 60}, &components.Velocity{X: 3, Y: 4}, &body)
	mapper.NewEntity(&components.Position{X: -200, Y: 100}, &components.Velocity{}, &body)

	sys := NewGridTransferSystem(w, 20, CellIndexTruncate, r2.Vec{X: 0, Y: -9.8})
	stats := sys.Update()

	assert.Equal(t, 18, stats.Cells)
	assert.Equal(t, 9, stats.Populated)
	assert.InDelta(t, 5.0, stats.TotalMass, 1e-12)
	assert.Equal(t, 18, sys.Grid().Len())

	// Particles are read-only to the transfer
	pos, vel, _ := mapper.Get(mapper.NewEntity(&components.Position{X: 1}, &components.Velocity{X: 2}, &body))
	sys.Update()
	assert.Equal(t, components.Position{X: 1}, *pos)
	assert.Equal(t, components.Velocity{X: 2}, *vel)
}
