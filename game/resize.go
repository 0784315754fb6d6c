package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/pbmpm/systems"
)

// ErrInvalidBounds is returned for non-positive or NaN half-extents.
var ErrInvalidBounds = errors.New("invalid bounds")

// Resize handles a window resize notification.
// Half-extents become half the window size and apply from the next tick.
func (s *Simulation) Resize(windowW, windowH float64) error {
	if err := s.SetBounds(windowW/2, windowH/2); err != nil {
		return fmt.Errorf("resize %vx%v: %w", windowW, windowH, err)
	}
	return nil
}

// SetBounds sets the world half-extents directly.
func (s *Simulation) SetBounds(halfW, halfH float64) error {
	if !(halfW > 0) || !(halfH > 0) {
		return fmt.Errorf("%w: half extents must be > 0, got %vx%v", ErrInvalidBounds, halfW, halfH)
	}
	if halfW == s.bounds.HalfWidth && halfH == s.bounds.HalfHeight {
		return nil
	}

	s.bounds = systems.Bounds{HalfWidth: halfW, HalfHeight: halfH}
	slog.Info("bounds updated",
		"tick", s.tick,
		"half_width", halfW,
		"half_height", halfH,
		"max_speed", s.bounds.MaxSpeed(s.cfg.Physics.MaxSpeedFactor),
	)
	return nil
}

// Bounds returns the current world half-extents.
func (s *Simulation) Bounds() systems.Bounds {
	return s.bounds
}
