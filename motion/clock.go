package motion

// Clock is simulation time in seconds, advanced once per fixed tick.
// Time-parameterised anchors read it instead of wall time so runs replay
// exactly.
type Clock struct {
	t     float64
	ticks int
}

func (c *Clock) Advance(dt float64) {
	c.t += dt
	c.ticks++
}

func (c *Clock) Now() float64 {
	return c.t
}

func (c *Clock) Ticks() int {
	return c.ticks
}

func (c *Clock) Reset() {
	c.t = 0
	c.ticks = 0
}
