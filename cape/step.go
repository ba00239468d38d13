package cape

// Wind derives the external push from the velocity of the body the chain
// hangs from. The chain trails opposite to the body's motion.
func Wind(velocity Vec3, factor float64) Vec3 {
	return velocity.Mul(-factor)
}

// Step runs one fixed simulation step: integrate, collide, then relax the
// constraints Config.Iterations times. All per-step inputs are explicit.
func (c *Chain) Step(anchor, wind Vec3, dt float64) {
	if c == nil {
		return
	}
	c.Integrate(wind, dt)
	c.ResolveCollisions()
	c.SatisfyConstraints(anchor, c.cfg.Iterations)
}
