package cape

// Integrate advances every segment one verlet step. Gravity is an
// acceleration and scales with dt², wind is treated as a velocity nudge and
// scales with dt.
func (c *Chain) Integrate(wind Vec3, dt float64) {
	gravity := c.cfg.Gravity.Mul(dt * dt)
	push := wind.Mul(dt)
	damping := c.cfg.Damping

	for i := range c.segments {
		s := &c.segments[i]
		velocity := s.Current.Sub(s.Previous).Mul(damping)
		s.Previous = s.Current
		s.Current = s.Current.Add(velocity).Add(gravity).Add(push)
	}
}
