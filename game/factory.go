package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pbmpm/components"
)

// Particle is a read-only view of one particle.
type Particle struct {
	ID     uint32
	X, Y   float64
	VX, VY float64
	Radius float64
}

// spawnRing creates the initial particles on a ring around the origin.
// Particle i sits at angle 2*pi*i/n with velocity ((i - n/2) * step, vertical).
func (s *Simulation) spawnRing() {
	sc := s.cfg.Spawn
	n := sc.Count
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x := sc.Radius * math.Cos(angle)
		y := sc.Radius * math.Sin(angle)
		vx := (float64(i) - float64(n)/2) * sc.VelocityStep
		s.SpawnParticle(x, y, vx, sc.VerticalSpeed, sc.Size)
	}
}

// SpawnParticle adds a particle with the given diameter and returns its entity.
func (s *Simulation) SpawnParticle(x, y, vx, vy, size float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.BodyFromSize(size)
	return s.particleMapper.NewEntity(&pos, &vel, &body)
}

// ParticleCount returns the number of live particles.
func (s *Simulation) ParticleCount() int {
	n := 0
	query := s.particleFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Particles returns a snapshot of every particle in query order.
func (s *Simulation) Particles() []Particle {
	var out []Particle
	query := s.particleFilter.Query()
	for query.Next() {
		pos, vel, body := query.Get()
		out = append(out, Particle{
			ID:     uint32(query.Entity().ID()),
			X:      pos.X,
			Y:      pos.Y,
			VX:     vel.X,
			VY:     vel.Y,
			Radius: body.Radius,
		})
	}
	return out
}

// Particle returns the current state of one particle.
func (s *Simulation) Particle(e ecs.Entity) Particle {
	pos, vel, body := s.particleMapper.Get(e)
	return Particle{
		ID:     uint32(e.ID()),
		X:      pos.X,
		Y:      pos.Y,
		VX:     vel.X,
		VY:     vel.Y,
		Radius: body.Radius,
	}
}
