package motion

import (
	"math"

	"github.com/milk9111/cape/cape"
)

// Fixed is an anchor that never moves.
type Fixed struct {
	Position cape.Vec3
}

func (f Fixed) AnchorPosition() cape.Vec3 {
	return f.Position
}

// Constant is a velocity source with a fixed value. The zero value disables
// wind.
type Constant struct {
	Value cape.Vec3
}

func (c Constant) Velocity() cape.Vec3 {
	return c.Value
}

// Sine oscillates each axis independently around Center:
// Center + Amplitude*sin(Frequency*t + Phase). Frequency is angular.
type Sine struct {
	Clock     *Clock
	Center    cape.Vec3
	Amplitude cape.Vec3
	Frequency cape.Vec3
	Phase     cape.Vec3
}

func (s *Sine) At(t float64) cape.Vec3 {
	p := s.Center
	for i := range p {
		p[i] += s.Amplitude[i] * math.Sin(s.Frequency[i]*t+s.Phase[i])
	}
	return p
}

func (s *Sine) AnchorPosition() cape.Vec3 {
	return s.At(s.Clock.Now())
}

// Facing reports the horizontal direction a host is moving in, holding the
// last direction while the host is still.
type Facing struct {
	Source cape.VelocitySource
	last   float64
}

const facingDeadZone = 1e-6

func (f *Facing) Sign() float64 {
	if f.last == 0 {
		f.last = 1
	}
	if f.Source == nil {
		return f.last
	}
	vx := f.Source.Velocity().X()
	switch {
	case vx > facingDeadZone:
		f.last = 1
	case vx < -facingDeadZone:
		f.last = -1
	}
	return f.last
}

func (f *Facing) Reset() {
	f.last = 1
}

// Offset places the anchor at a local offset from a host position, such as
// a shoulder bone relative to a character's origin. With a Facing set the
// offset's X is mirrored when the host turns around.
type Offset struct {
	Host   cape.AnchorProvider
	Local  cape.Vec3
	Facing *Facing
}

func (o *Offset) AnchorPosition() cape.Vec3 {
	local := o.Local
	if o.Facing != nil {
		local[0] *= o.Facing.Sign()
	}
	return o.Host.AnchorPosition().Add(local)
}
