package cape

import "fmt"

// Segment is one verlet particle of the chain. Velocity is implied by the
// difference between Current and Previous.
type Segment struct {
	Current  Vec3
	Previous Vec3
}

// Chain is a single open particle chain pinned at its first segment.
type Chain struct {
	cfg      Config
	surface  CollisionSurface
	segments []Segment
}

// NewChain builds a chain hanging straight down from anchor.
func NewChain(cfg Config, anchor Vec3, surface CollisionSurface) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, ErrNilSurface
	}
	c := &Chain{
		cfg:      cfg,
		surface:  surface,
		segments: make([]Segment, cfg.SegmentCount),
	}
	c.Reset(anchor)
	return c, nil
}

// Reset re-initialises every segment below anchor, at rest.
func (c *Chain) Reset(anchor Vec3) {
	if c == nil {
		return
	}
	for i := range c.segments {
		p := anchor
		p[1] -= float64(i) * c.cfg.SegmentLength
		c.segments[i] = Segment{Current: p, Previous: p}
	}
}

// Reconfigure swaps the tunables and re-initialises the chain at anchor.
// The chain is left untouched when cfg is invalid.
func (c *Chain) Reconfigure(cfg Config, anchor Vec3) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SegmentCount != len(c.segments) {
		c.segments = make([]Segment, cfg.SegmentCount)
	}
	c.cfg = cfg
	c.Reset(anchor)
	return nil
}

// Retune swaps the tunables without moving any segment. The segment count
// is fixed for a chain's lifetime here; changing it needs Reconfigure.
func (c *Chain) Retune(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SegmentCount != len(c.segments) {
		return fmt.Errorf("%w: retune cannot change segment count %d to %d", ErrInvalidConfig, len(c.segments), cfg.SegmentCount)
	}
	c.cfg = cfg
	return nil
}

func (c *Chain) Config() Config {
	return c.cfg
}

func (c *Chain) Surface() CollisionSurface {
	return c.surface
}

// Len returns the number of segments.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.segments)
}

// Segment returns a copy of segment i.
func (c *Chain) Segment(i int) Segment {
	return c.segments[i]
}

// Positions returns a fresh copy of every segment's current position in
// chain order.
func (c *Chain) Positions() []Vec3 {
	return c.AppendPositions(make([]Vec3, 0, c.Len()))
}

// AppendPositions appends the current positions to dst. Passing a slice
// with enough capacity avoids allocation.
func (c *Chain) AppendPositions(dst []Vec3) []Vec3 {
	if c == nil {
		return dst
	}
	for i := range c.segments {
		dst = append(dst, c.segments[i].Current)
	}
	return dst
}
