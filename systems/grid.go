package systems

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/pbmpm/components"
	"github.com/pthm-cable/pbmpm/config"
)

// CellIndexMode selects how a world coordinate maps to a cell index.
type CellIndexMode uint8

const (
	// CellIndexTruncate rounds toward zero. Cells straddling an axis are
	// twice as wide as the rest, which matches the historical behaviour.
	CellIndexTruncate CellIndexMode = iota
	// CellIndexFloor rounds toward negative infinity.
	CellIndexFloor
)

// ParseCellIndexMode converts a config string into a CellIndexMode.
func ParseCellIndexMode(s string) (CellIndexMode, bool) {
	switch s {
	case config.CellIndexTruncate:
		return CellIndexTruncate, true
	case config.CellIndexFloor:
		return CellIndexFloor, true
	}
	return CellIndexTruncate, false
}

// CellCoord is an integer grid cell coordinate.
type CellCoord struct {
	X, Y int32
}

// GridCell holds the velocity and weight accumulated in one cell.
// Mass is a speed-weighted sum of kernel weights, not a physical mass.
// Velocity is only meaningful when Mass > 0.
type GridCell struct {
	Velocity r2.Vec
	Mass     float64
}

// CellSnapshot is a flattened copy of one grid cell.
type CellSnapshot struct {
	X, Y   int32
	VX, VY float64
	Mass   float64
}

// Grid is a sparse velocity field rebuilt from the particles every tick.
// Cells only exist where at least one particle's 3x3 footprint landed.
type Grid struct {
	cellSize float64
	mode     CellIndexMode
	cells    map[CellCoord]*GridCell
	previous map[CellCoord]r2.Vec
}

// NewGrid creates an empty grid.
func NewGrid(cellSize float64, mode CellIndexMode) *Grid {
	return &Grid{
		cellSize: cellSize,
		mode:     mode,
		cells:    make(map[CellCoord]*GridCell),
		previous: make(map[CellCoord]r2.Vec),
	}
}

// WorldToCell returns the base cell for a world position.
func (g *Grid) WorldToCell(p r2.Vec) CellCoord {
	x, y := p.X/g.cellSize, p.Y/g.cellSize
	if g.mode == CellIndexFloor {
		x, y = math.Floor(x), math.Floor(y)
	}
	// int32 conversion truncates toward zero
	return CellCoord{X: int32(x), Y: int32(y)}
}

// QuadraticWeights returns the three-point quadratic spline weights for
// the cells at offsets -1, 0 and +1 given the in-cell offset f.
// The weights always sum to 1 and are non-negative for f in [-0.5, 0.5].
func QuadraticWeights(f float64) [3]float64 {
	return [3]float64{
		0.5 * (0.5 - f) * (0.5 - f),
		0.75 - f*f,
		0.5 * (0.5 + f) * (0.5 + f),
	}
}

// Clear stores every cell's velocity as the previous-tick velocity and empties the grid.
func (g *Grid) Clear() {
	clear(g.previous)
	for idx, cell := range g.cells {
		g.previous[idx] = cell.Velocity
	}
	clear(g.cells)
}

// Scatter distributes one particle over the 3x3 cells around its base cell.
// Cell mass grows by weight*|v| and cell velocity by weight*v.
func (g *Grid) Scatter(pos, vel r2.Vec) {
	base := g.WorldToCell(pos)
	offset := r2.Sub(r2.Scale(1/g.cellSize, pos), r2.Vec{X: float64(base.X), Y: float64(base.Y)})

	wx := QuadraticWeights(offset.X)
	wy := QuadraticWeights(offset.Y)
	speed := r2.Norm(vel)

	for gx := 0; gx < 3; gx++ {
		for gy := 0; gy < 3; gy++ {
			w := wx[gx] * wy[gy]
			idx := CellCoord{X: base.X + int32(gx) - 1, Y: base.Y + int32(gy) - 1}

			cell, ok := g.cells[idx]
			if !ok {
				cell = &GridCell{}
				g.cells[idx] = cell
			}
			cell.Mass += w * speed
			cell.Velocity = r2.Add(cell.Velocity, r2.Scale(w, vel))
		}
	}
}

// Finalize blends every populated cell with its previous-tick velocity and
// adds gravity. Gravity is a per-tick bias here and is not scaled by dt.
func (g *Grid) Finalize(gravity r2.Vec) {
	for idx, cell := range g.cells {
		if cell.Mass <= 0 {
			continue
		}
		prev := g.previous[idx] // zero when absent
		cell.Velocity = r2.Add(r2.Scale(0.5, r2.Add(cell.Velocity, prev)), gravity)
	}
}

// Cell returns a copy of the cell at (x, y) and whether it was touched this tick.
func (g *Grid) Cell(x, y int32) (GridCell, bool) {
	cell, ok := g.cells[CellCoord{X: x, Y: y}]
	if !ok {
		return GridCell{}, false
	}
	return *cell, true
}

// Previous returns the velocity a cell had at the end of the previous tick.
func (g *Grid) Previous(x, y int32) (r2.Vec, bool) {
	v, ok := g.previous[CellCoord{X: x, Y: y}]
	return v, ok
}

// Len returns the number of cells touched this tick.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Populated returns the number of cells with positive mass.
func (g *Grid) Populated() int {
	n := 0
	for _, cell := range g.cells {
		if cell.Mass > 0 {
			n++
		}
	}
	return n
}

// TotalMass returns the summed mass of all cells.
func (g *Grid) TotalMass() float64 {
	var total float64
	for _, cell := range g.cells {
		total += cell.Mass
	}
	return total
}

// Snapshot returns all cells sorted by X then Y.
func (g *Grid) Snapshot() []CellSnapshot {
	out := make([]CellSnapshot, 0, len(g.cells))
	for idx, cell := range g.cells {
		out = append(out, CellSnapshot{
			X:    idx.X,
			Y:    idx.Y,
			VX:   cell.Velocity.X,
			VY:   cell.Velocity.Y,
			Mass: cell.Mass,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// GridStats summarizes the grid after a transfer.
type GridStats struct {
	Cells     int
	Populated int
	TotalMass float64
}

// GridTransferSystem rebuilds the velocity grid from particle state.
// It only reads particles.
type GridTransferSystem struct {
	filter  ecs.Filter2[components.Position, components.Velocity]
	grid    *Grid
	gravity r2.Vec
}

// NewGridTransferSystem creates a new grid transfer system.
func NewGridTransferSystem(w *ecs.World, cellSize float64, mode CellIndexMode, gravity r2.Vec) *GridTransferSystem {
	return &GridTransferSystem{
		filter:  *ecs.NewFilter2[components.Position, components.Velocity](w),
		grid:    NewGrid(cellSize, mode),
		gravity: gravity,
	}
}

// Grid returns the grid built by the last Update.
func (s *GridTransferSystem) Grid() *Grid {
	return s.grid
}

// Update clears the grid, scatters every particle and blends with the previous tick.
func (s *GridTransferSystem) Update() GridStats {
	s.grid.Clear()

	query := s.filter.Query()
	for query.Next() {
		pos, vel := query.Get()
		s.grid.Scatter(pos.Vec(), vel.Vec())
	}

	s.grid.Finalize(s.gravity)

	return GridStats{
		Cells:     s.grid.Len(),
		Populated: s.grid.Populated(),
		TotalMass: s.grid.TotalMass(),
	}
}
