package motion

import "github.com/milk9111/cape/cape"

// Tracker derives a velocity from an anchor by finite difference. Sample
// must be called once per tick after the clock advanced.
type Tracker struct {
	Source cape.AnchorProvider
	// MaxSpeed clamps the reported speed so a teleporting anchor does not
	// produce a huge wind impulse. Zero means unlimited.
	MaxSpeed float64

	prev   cape.Vec3
	vel    cape.Vec3
	primed bool
}

func NewTracker(src cape.AnchorProvider) *Tracker {
	return &Tracker{Source: src}
}

func (t *Tracker) Sample(dt float64) {
	p := t.Source.AnchorPosition()
	if t.primed && dt > 0 {
		t.vel = p.Sub(t.prev).Mul(1 / dt)
		if t.MaxSpeed > 0 {
			if s := t.vel.Len(); s > t.MaxSpeed {
				t.vel = t.vel.Mul(t.MaxSpeed / s)
			}
		}
	} else {
		t.vel = cape.Vec3{}
	}
	t.prev = p
	t.primed = true
}

func (t *Tracker) Velocity() cape.Vec3 {
	return t.vel
}

func (t *Tracker) Reset() {
	t.primed = false
	t.vel = cape.Vec3{}
}
