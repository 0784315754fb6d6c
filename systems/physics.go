// Package systems contains ECS systems for the simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/pbmpm/components"
)

// Bounds holds the world half-extents. The world spans [-HalfWidth, HalfWidth]
// horizontally and [-HalfHeight, HalfHeight] vertically.
type Bounds struct {
	HalfWidth, HalfHeight float64
}

// MaxSpeed returns the speed cap for these bounds.
func (b Bounds) MaxSpeed(factor float64) float64 {
	return math.Max(b.HalfWidth, b.HalfHeight) * factor
}

// IntegratorParams holds the constants used by the integrator.
type IntegratorParams struct {
	Gravity         r2.Vec
	BounceDampening float64
	RestThreshold   float64
	MaxSpeedFactor  float64
}

// StepResult reports what happened to a single particle during integration.
type StepResult struct {
	BouncedX bool
	BouncedY bool
	Rested   bool // vy snapped to zero after a vertical bounce
	Clamped  bool // speed cap applied
}

// signum returns -1 for negative x (including -0) and 1 otherwise.
func signum(x float64) float64 {
	if math.Signbit(x) {
		return -1
	}
	return 1
}

// Integrate advances one particle by dt. halfSize is the particle's half-extent
// used against the walls. Bounces are handled per axis, so a particle can hit
// a corner and reflect on both axes in the same step.
//
// A wall is placed at (half-extent - halfSize) * sign(position). When the world
// is narrower than the particle that limit is negative and the particle lands
// on the opposite side of the origin.
func Integrate(pos *components.Position, vel *components.Velocity, halfSize, dt float64, bounds Bounds, p IntegratorParams) StepResult {
	var res StepResult

	v := r2.Add(vel.Vec(), r2.Scale(dt, p.Gravity))
	next := r2.Add(pos.Vec(), r2.Scale(dt, v))

	limitX := bounds.HalfWidth - halfSize
	limitY := bounds.HalfHeight - halfSize

	if math.Abs(next.X) > limitX {
		next.X = limitX * signum(next.X)
		v.X = -v.X * p.BounceDampening
		res.BouncedX = true
	}

	if math.Abs(next.Y) > limitY {
		next.Y = limitY * signum(next.Y)
		v.Y = -v.Y * p.BounceDampening
		res.BouncedY = true

		// Rest deadband stops endless micro-bounces on the floor
		if math.Abs(v.Y) < p.RestThreshold {
			v.Y = 0
			res.Rested = true
		}
	}

	v, res.Clamped = clampLength(v, bounds.MaxSpeed(p.MaxSpeedFactor))

	*vel = components.Velocity(v)
	*pos = components.Position(next)
	return res
}

// IntegratorStats aggregates step results over all particles in a tick.
type IntegratorStats struct {
	Particles int
	BouncesX  int
	BouncesY  int
	Rests     int
	Clamps    int
}

// IntegratorSystem moves every particle under gravity and keeps it inside the bounds.
type IntegratorSystem struct {
	filter ecs.Filter3[components.Position, components.Velocity, components.Body]
	params IntegratorParams
}

// NewIntegratorSystem creates a new integrator system.
func NewIntegratorSystem(w *ecs.World, params IntegratorParams) *IntegratorSystem {
	return &IntegratorSystem{
		filter: *ecs.NewFilter3[components.Position, components.Velocity, components.Body](w),
		params: params,
	}
}

// Update runs the integrator for one tick.
func (s *IntegratorSystem) Update(dt float64, bounds Bounds) IntegratorStats {
	var stats IntegratorStats

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body := query.Get()

		res := Integrate(pos, vel, body.Radius, dt, bounds, s.params)

		stats.Particles++
		if res.BouncedX {
			stats.BouncesX++
		}
		if res.BouncedY {
			stats.BouncesY++
		}
		if res.Rested {
			stats.Rests++
		}
		if res.Clamped {
			stats.Clamps++
		}
	}

	return stats
}
