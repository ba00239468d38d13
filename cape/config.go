package cape

import (
	"fmt"
	"math"
)

// Config holds the startup tunables of a chain.
type Config struct {
	SegmentCount  int
	SegmentLength float64
	// Iterations is the number of constraint relaxation passes per step.
	// More passes give a stiffer, less elastic chain.
	Iterations int
	Gravity    Vec3
	// Damping scales the inferred velocity every step. 1 keeps all momentum.
	Damping    float64
	WindFactor float64
	// Radius is the collision clearance kept between a segment and solid
	// geometry.
	Radius float64
}

// DefaultConfig returns the tuning used by the player cape.
func DefaultConfig() Config {
	return Config{
		SegmentCount:  10,
		SegmentLength: 0.1,
		Iterations:    8,
		Gravity:       Vec3{0, -15, 0},
		Damping:       0.98,
		WindFactor:    0.1,
		Radius:        0.05,
	}
}

// Validate checks the tunables a chain cannot run without.
func (c Config) Validate() error {
	switch {
	case c.SegmentCount < 1:
		return fmt.Errorf("%w: segment count %d < 1", ErrInvalidConfig, c.SegmentCount)
	case !(c.SegmentLength > 0) || math.IsInf(c.SegmentLength, 0):
		return fmt.Errorf("%w: segment length %v", ErrInvalidConfig, c.SegmentLength)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations %d < 1", ErrInvalidConfig, c.Iterations)
	case !(c.Damping > 0 && c.Damping <= 1):
		return fmt.Errorf("%w: damping %v outside (0,1]", ErrInvalidConfig, c.Damping)
	case !Finite(c.Gravity):
		return fmt.Errorf("%w: gravity %+v", ErrInvalidConfig, c.Gravity)
	case math.IsNaN(c.WindFactor) || math.IsInf(c.WindFactor, 0):
		return fmt.Errorf("%w: wind factor %v", ErrInvalidConfig, c.WindFactor)
	case !(c.Radius >= 0) || math.IsInf(c.Radius, 0):
		return fmt.Errorf("%w: radius %v", ErrInvalidConfig, c.Radius)
	}
	return nil
}
