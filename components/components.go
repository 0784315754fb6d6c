// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Vec returns the position as an r2 vector.
func (p Position) Vec() r2.Vec { return r2.Vec(p) }

// Vec returns the velocity as an r2 vector.
func (v Velocity) Vec() r2.Vec { return r2.Vec(v) }

// Speed returns the velocity magnitude.
func (v Velocity) Speed() float64 { return r2.Norm(r2.Vec(v)) }
