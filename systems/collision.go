package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/pbmpm/components"
)

// Contact reports the outcome of resolving one pair.
type Contact struct {
	Overlap bool    // disks overlapped and were pushed apart
	Impulse bool    // an impulse was applied along the normal
	Depth   float64 // penetration depth before correction
}

// ResolvePair separates two overlapping disks and, when they are approaching,
// exchanges an equal and opposite impulse along the contact normal.
// Both particles are treated as having the same mass.
//
// Coincident centres have no normal, so neither correction nor impulse moves
// them; the next integrator step usually splits them.
func ResolvePair(
	posA *components.Position, velA *components.Velocity, radiusA float64,
	posB *components.Position, velB *components.Velocity, radiusB float64,
	restitution float64,
) Contact {
	diff := r2.Sub(posB.Vec(), posA.Vec())
	distance := r2.Norm(diff)
	minDistance := radiusA + radiusB

	if distance >= minDistance {
		return Contact{}
	}

	normal := normalizeOrZero(diff)
	penetration := minDistance - distance

	correction := r2.Scale(penetration/2, normal)
	*posA = components.Position(r2.Sub(posA.Vec(), correction))
	*posB = components.Position(r2.Add(posB.Vec(), correction))

	contact := Contact{Overlap: true, Depth: penetration}

	relative := r2.Sub(velB.Vec(), velA.Vec())
	alongNormal := r2.Dot(relative, normal)
	if alongNormal >= 0 {
		// Already separating
		return contact
	}

	magnitude := -(1 + restitution) * alongNormal / 2
	impulse := r2.Scale(magnitude, normal)
	*velA = components.Velocity(r2.Sub(velA.Vec(), impulse))
	*velB = components.Velocity(r2.Add(velB.Vec(), impulse))

	contact.Impulse = true
	return contact
}

// CollisionStats aggregates a resolution pass.
type CollisionStats struct {
	PairsChecked int
	Contacts     int
	Impulses     int
}

// CollisionSystem resolves particle-particle overlaps.
//
// Pairs are visited as (i, j) with i < j over a snapshot of the live
// particles, so each unordered pair is handled exactly once per pass.
// A particle touching several others accumulates corrections in pair order;
// the floating-point result depends on that order.
type CollisionSystem struct {
	filter      ecs.Filter3[components.Position, components.Velocity, components.Body]
	mapper      *ecs.Map3[components.Position, components.Velocity, components.Body]
	restitution float64
	broadPhase  *BroadPhase // nil = test every pair

	entities []ecs.Entity
	pairs    []Pair
}

// NewCollisionSystem creates a new collision system.
// A nil broad phase means every pair is tested.
func NewCollisionSystem(w *ecs.World, restitution float64, broadPhase *BroadPhase) *CollisionSystem {
	return &CollisionSystem{
		filter:      *ecs.NewFilter3[components.Position, components.Velocity, components.Body](w),
		mapper:      ecs.NewMap3[components.Position, components.Velocity, components.Body](w),
		restitution: restitution,
		broadPhase:  broadPhase,
	}
}

// Update runs one resolution pass.
func (s *CollisionSystem) Update() CollisionStats {
	s.entities = s.entities[:0]
	query := s.filter.Query()
	for query.Next() {
		s.entities = append(s.entities, query.Entity())
	}

	if s.broadPhase != nil {
		s.pairs = s.broadPhase.Pairs(s.pairs[:0], s.entities, s.mapper)
	} else {
		s.pairs = AllPairs(s.pairs[:0], len(s.entities))
	}

	var stats CollisionStats
	for _, p := range s.pairs {
		posA, velA, bodyA := s.mapper.Get(s.entities[p.A])
		posB, velB, bodyB := s.mapper.Get(s.entities[p.B])

		c := ResolvePair(posA, velA, bodyA.Radius, posB, velB, bodyB.Radius, s.restitution)

		stats.PairsChecked++
		if c.Overlap {
			stats.Contacts++
		}
		if c.Impulse {
			stats.Impulses++
		}
	}
	return stats
}

// Pair holds two indices into a particle snapshot with A < B.
type Pair struct {
	A, B int
}

// AllPairs appends every unordered index pair of n items to dst in (i, j) order.
func AllPairs(dst []Pair, n int) []Pair {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dst = append(dst, Pair{A: i, B: j})
		}
	}
	return dst
}
