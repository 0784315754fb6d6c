package telemetry

import "math"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for current window
	bouncesX     int
	bouncesY     int
	rests        int
	clamps       int
	pairsChecked int
	contacts     int
	impulses     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(math.Round(windowDurationSec / dt))
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordIntegration records wall and speed-cap events from one integrator pass.
func (c *Collector) RecordIntegration(bouncesX, bouncesY, rests, clamps int) {
	c.bouncesX += bouncesX
	c.bouncesY += bouncesY
	c.rests += rests
	c.clamps += clamps
}

// RecordCollisions records the outcome of one collision pass.
func (c *Collector) RecordCollisions(pairsChecked, contacts, impulses int) {
	c.pairsChecked += pairsChecked
	c.contacts += contacts
	c.impulses += impulses
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// GridSummary describes the velocity grid at window end.
type GridSummary struct {
	Cells     int
	Populated int
	Mass      float64
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds holds the current speed of every particle.
func (c *Collector) Flush(currentTick int32, speeds []float64, grid GridSummary) WindowStats {
	sp := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles: len(speeds),

		BouncesX: c.bouncesX,
		BouncesY: c.bouncesY,
		Rests:    c.rests,
		Clamps:   c.clamps,

		PairsChecked: c.pairsChecked,
		Contacts:     c.contacts,
		Impulses:     c.impulses,

		SpeedMean:     sp.Mean,
		SpeedStd:      sp.Std,
		SpeedP10:      sp.P10,
		SpeedP50:      sp.P50,
		SpeedP90:      sp.P90,
		SpeedMax:      sp.Max,
		KineticEnergy: sp.Kinetic,

		GridCells:     grid.Cells,
		GridPopulated: grid.Populated,
		GridMass:      grid.Mass,
	}

	c.windowStartTick = currentTick
	c.bouncesX = 0
	c.bouncesY = 0
	c.rests = 0
	c.clamps = 0
	c.pairsChecked = 0
	c.contacts = 0
	c.impulses = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
