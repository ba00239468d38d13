package motion

import (
	"fmt"

	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/prefabs"
)

// Driver owns the clock and the stateful velocity trackers behind an anchor
// so a host can advance them together once per tick.
type Driver struct {
	Clock    *Clock
	Anchor   cape.AnchorProvider
	Velocity cape.VelocitySource

	// Script is set when the anchor is script driven, for hot reload.
	Script *Script

	trackers []*Tracker
	facing   *Facing
}

// Advance moves the clock forward and resamples the trackers in dependency
// order.
func (d *Driver) Advance(dt float64) {
	d.Clock.Advance(dt)
	for _, t := range d.trackers {
		t.Sample(dt)
	}
}

// Reset rewinds the clock and primes the trackers at the initial position.
func (d *Driver) Reset() {
	d.Clock.Reset()
	if d.facing != nil {
		d.facing.Reset()
	}
	for _, t := range d.trackers {
		t.Reset()
		t.Sample(0)
	}
}

// LimitSpeed clamps every tracked velocity, see Tracker.MaxSpeed.
func (d *Driver) LimitSpeed(max float64) {
	for _, t := range d.trackers {
		t.MaxSpeed = max
	}
}

// FromSpec builds the anchor and velocity source a scenario describes.
func FromSpec(anchor prefabs.AnchorSpec, velocity prefabs.VelocitySpec) (*Driver, error) {
	d := &Driver{Clock: &Clock{}}

	var base cape.AnchorProvider
	switch anchor.Kind {
	case "", prefabs.AnchorFixed:
		base = Fixed{Position: anchor.Position.Vec3}
	case prefabs.AnchorSine:
		base = &Sine{
			Clock:     d.Clock,
			Center:    anchor.Position.Vec3,
			Amplitude: anchor.Amplitude.Vec3,
			Frequency: anchor.Frequency.Vec3,
			Phase:     anchor.Phase.Vec3,
		}
	case prefabs.AnchorPath:
		keys := make([]Keyframe, 0, len(anchor.Keyframes))
		for i, k := range anchor.Keyframes {
			fn, err := Ease(k.Ease)
			if err != nil {
				return nil, fmt.Errorf("motion: keyframe %d: %w", i, err)
			}
			keys = append(keys, Keyframe{At: k.At.Vec3, Duration: k.Duration, Ease: fn})
		}
		path, err := NewPath(d.Clock, keys, anchor.Loop)
		if err != nil {
			return nil, err
		}
		base = path
	case prefabs.AnchorScript:
		src, err := prefabs.LoadScript(anchor.Script)
		if err != nil {
			return nil, fmt.Errorf("motion: load script %s: %w", anchor.Script, err)
		}
		script, err := NewScript(d.Clock, anchor.Script, src, anchor.Position.Vec3)
		if err != nil {
			return nil, err
		}
		d.Script = script
		base = script
	default:
		return nil, fmt.Errorf("motion: unknown anchor kind %q", anchor.Kind)
	}

	if err := d.wire(base, anchor, velocity); err != nil {
		return nil, err
	}
	d.Reset()
	return d, nil
}

// Follow builds a driver around an anchor owned by the host, such as a
// cursor or a character's shoulder. The AnchorSpec offset and velocity settings
// still apply; its kind and path fields are ignored.
func Follow(host cape.AnchorProvider, anchor prefabs.AnchorSpec, velocity prefabs.VelocitySpec) (*Driver, error) {
	if host == nil {
		return nil, cape.ErrNilAnchor
	}
	d := &Driver{Clock: &Clock{}}
	if err := d.wire(host, anchor, velocity); err != nil {
		return nil, err
	}
	d.Reset()
	return d, nil
}

func (d *Driver) wire(base cape.AnchorProvider, anchor prefabs.AnchorSpec, velocity prefabs.VelocitySpec) error {
	d.Anchor = base
	if anchor.Offset.Vec3 != (cape.Vec3{}) || anchor.Mirror {
		off := &Offset{Host: base, Local: anchor.Offset.Vec3}
		if anchor.Mirror {
			host := NewTracker(base)
			d.trackers = append(d.trackers, host)
			d.facing = &Facing{Source: host}
			off.Facing = d.facing
		}
		d.Anchor = off
	}

	switch velocity.Mode {
	case "", prefabs.VelocityTracked:
		t := NewTracker(d.Anchor)
		d.trackers = append(d.trackers, t)
		d.Velocity = t
	case prefabs.VelocityNone:
		d.Velocity = Constant{}
	case prefabs.VelocityConstant:
		d.Velocity = Constant{Value: velocity.Value.Vec3}
	default:
		return fmt.Errorf("motion: unknown velocity mode %q", velocity.Mode)
	}

	return nil
}
