package systems

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pbmpm/components"
)

// BroadPhase buckets particles into square cells so contact tests only run
// between particles in neighbouring cells.
//
// The cell size is never smaller than the largest contact distance, so any
// overlapping pair sits in the same or an adjacent cell.
type BroadPhase struct {
	cellSize float64
	cells    map[CellCoord][]int
}

// NewBroadPhase creates a broad phase. cellSize 0 means "twice the largest radius".
func NewBroadPhase(cellSize float64) *BroadPhase {
	return &BroadPhase{
		cellSize: cellSize,
		cells:    make(map[CellCoord][]int),
	}
}

// Clear empties the broad phase. Only cells occupied on the next call exist afterwards.
func (b *BroadPhase) Clear() {
	clear(b.cells)
}

// Buckets returns the number of occupied cells from the last Pairs call.
func (b *BroadPhase) Buckets() int {
	return len(b.cells)
}

func (b *BroadPhase) cellOf(x, y, size float64) CellCoord {
	return CellCoord{X: int32(math.Floor(x / size)), Y: int32(math.Floor(y / size))}
}

// Pairs appends the candidate pairs among entities to dst, sorted by (A, B).
// Indices refer to positions in entities.
func (b *BroadPhase) Pairs(dst []Pair, entities []ecs.Entity, mapper *ecs.Map3[components.Position, components.Velocity, components.Body]) []Pair {
	b.Clear()

	size := b.cellSize
	var maxRadius float64
	for _, e := range entities {
		_, _, body := mapper.Get(e)
		maxRadius = math.Max(maxRadius, body.Radius)
	}
	if size < 2*maxRadius {
		size = 2 * maxRadius
	}
	if size <= 0 {
		// All radii are zero: nothing can overlap
		return dst
	}

	coords := make([]CellCoord, len(entities))
	for i, e := range entities {
		pos, _, _ := mapper.Get(e)
		c := b.cellOf(pos.X, pos.Y, size)
		coords[i] = c
		b.cells[c] = append(b.cells[c], i)
	}

	start := len(dst)
	for i, c := range coords {
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for _, j := range b.cells[CellCoord{X: c.X + dx, Y: c.Y + dy}] {
					// Each j lives in exactly one bucket, so j > i yields each pair once
					if j > i {
						dst = append(dst, Pair{A: i, B: j})
					}
				}
			}
		}
	}

	found := dst[start:]
	sort.Slice(found, func(x, y int) bool {
		if found[x].A != found[y].A {
			return found[x].A < found[y].A
		}
		return found[x].B < found[y].B
	})
	return dst
}
