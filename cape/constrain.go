package cape

// minDistance replaces a zero pair distance so the error term stays finite.
const minDistance = 0.001

// SatisfyConstraints relaxes the rest-length constraints between
// consecutive segments. Each pass re-pins the first segment to anchor, and
// the pinned segment never receives a correction.
func (c *Chain) SatisfyConstraints(anchor Vec3, iterations int) {
	if len(c.segments) == 0 {
		return
	}
	rest := c.cfg.SegmentLength
	for it := 0; it < iterations; it++ {
		c.segments[0].Current = anchor
		for i := 0; i < len(c.segments)-1; i++ {
			a := &c.segments[i]
			b := &c.segments[i+1]

			delta := b.Current.Sub(a.Current)
			dist := delta.Len()
			if dist == 0 {
				dist = minDistance
			}
			correction := delta.Mul(0.5 * (dist - rest) / dist)

			if i != 0 {
				a.Current = a.Current.Add(correction)
			}
			b.Current = b.Current.Sub(correction)
		}
	}
}
