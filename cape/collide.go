package cape

// normalEpsilonSq is the squared length below which a push-out normal is
// considered degenerate.
const normalEpsilonSq = 1e-4

// Hit describes solid geometry found by an overlap query.
type Hit struct {
	// Point is the closest point on the geometry's surface.
	Point Vec3
	// Inside is set when the query centre lies inside the geometry, in which
	// case Point-to-centre faces inward.
	Inside bool
}

// CollisionSurface answers sphere overlap queries against static geometry.
// Implementations must allow concurrent calls when several chains share
// one surface.
type CollisionSurface interface {
	QueryOverlap(center Vec3, radius float64) (Hit, bool)
}

// NoSurface is an empty environment.
type NoSurface struct{}

func (NoSurface) QueryOverlap(Vec3, float64) (Hit, bool) {
	return Hit{}, false
}

// ResolveCollisions pushes every free segment that overlaps solid geometry
// out to the clearance radius. The pinned first segment is skipped.
func (c *Chain) ResolveCollisions() {
	radius := c.cfg.Radius
	for i := 1; i < len(c.segments); i++ {
		s := &c.segments[i]
		hit, ok := c.surface.QueryOverlap(s.Current, radius)
		if !ok {
			continue
		}
		s.Current = pushOut(s.Current, hit, radius)
	}
}

func pushOut(p Vec3, hit Hit, radius float64) Vec3 {
	normal := p.Sub(hit.Point)
	if hit.Inside {
		normal = normal.Mul(-1)
	}
	if normal.LenSqr() < normalEpsilonSq {
		normal = Up
	} else {
		normal = normal.Normalize()
	}
	return hit.Point.Add(normal.Mul(radius))
}
