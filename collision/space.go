package collision

import (
	"log"
	"math"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/levels"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeHazard
)

const boundsThickness = 0.01

// Space owns a Chipmunk space holding static environment geometry and
// answers cape overlap queries against it.
type Space struct {
	mu    sync.RWMutex
	space *cp.Space
}

// NewSpace returns an empty environment.
func NewSpace() *Space {
	return &Space{space: cp.NewSpace()}
}

// NewSpaceFromLevel builds static shapes for every physics layer of a level
// plus segments along the world bounds.
func NewSpaceFromLevel(level *levels.Level) *Space {
	s := NewSpace()
	if level == nil {
		return s
	}
	shapes := 0
	for _, layer := range level.PhysicsLayers() {
		shapes += s.processLayerTiles(level, layer)
	}

	worldW, worldH := level.WorldSize()
	bounds := []struct{ a, b cp.Vector }{
		{cp.Vector{X: 0, Y: 0}, cp.Vector{X: worldW, Y: 0}},
		{cp.Vector{X: 0, Y: 0}, cp.Vector{X: 0, Y: worldH}},
		{cp.Vector{X: worldW, Y: 0}, cp.Vector{X: worldW, Y: worldH}},
	}
	for _, seg := range bounds {
		s.addShape(cp.NewSegment(s.space.StaticBody, seg.a, seg.b, boundsThickness), collisionTypeSolid)
	}
	log.Printf("Space: built %d static shapes for %dx%d level", shapes, level.Width, level.Height)
	return s
}

// AddBox adds a solid axis-aligned box.
func (s *Space) AddBox(left, bottom, right, top float64) {
	bb := cp.BB{L: left, B: bottom, R: right, T: top}
	s.addShape(cp.NewBox2(s.space.StaticBody, bb, 0), collisionTypeSolid)
}

// AddCircle adds a solid disc.
func (s *Space) AddCircle(x, y, radius float64) {
	s.addShape(cp.NewCircle(s.space.StaticBody, radius, cp.Vector{X: x, Y: y}), collisionTypeSolid)
}

// AddSegment adds a solid capsule between a and b.
func (s *Space) AddSegment(ax, ay, bx, by, radius float64) {
	shape := cp.NewSegment(s.space.StaticBody, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, radius)
	s.addShape(shape, collisionTypeSolid)
}

// AddPolygon adds a solid convex polygon. Chipmunk computes the hull of the
// given points.
func (s *Space) AddPolygon(points []cp.Vector) {
	if len(points) < 3 {
		return
	}
	shape := cp.NewPolyShape(s.space.StaticBody, len(points), points, cp.NewTransformIdentity(), 0)
	s.addShape(shape, collisionTypeSolid)
}

// AddHazard adds a triangular sensor. Sensors are drawn but never collide
// with the cape.
func (s *Space) AddHazard(left, bottom, size float64) {
	verts := []cp.Vector{
		{X: left, Y: bottom},
		{X: left + size, Y: bottom},
		{X: left + size/2, Y: bottom + size},
	}
	shape := cp.NewPolyShapeRaw(s.space.StaticBody, 3, verts, 0)
	shape.SetSensor(true)
	s.addShape(shape, collisionTypeHazard)
}

func (s *Space) addShape(shape *cp.Shape, kind cp.CollisionType) {
	shape.SetFriction(0.8)
	shape.SetCollisionType(kind)
	s.mu.Lock()
	s.space.AddShape(shape)
	s.mu.Unlock()
}

// QueryOverlap reports the nearest solid shape within radius of center.
// Only the XY plane is considered; the hit keeps center's Z.
func (s *Space) QueryOverlap(center cape.Vec3, radius float64) (cape.Hit, bool) {
	if s == nil {
		return cape.Hit{}, false
	}
	p := cp.Vector{X: center.X(), Y: center.Y()}

	s.mu.RLock()
	info := s.space.PointQueryNearest(p, radius, cp.SHAPE_FILTER_ALL)
	s.mu.RUnlock()

	if info == nil || info.Shape == nil {
		return cape.Hit{}, false
	}
	// On a circle's centre or a capsule's spine cp has no usable closest
	// point, but the gradient and depth still give the way out.
	if degenerate(info, p) {
		exit := p.Add(info.Gradient.Mult(-info.Distance))
		if math.IsNaN(exit.X) || math.IsNaN(exit.Y) {
			return cape.Hit{Point: center, Inside: true}, true
		}
		return cape.Hit{Point: cape.V3(exit.X, exit.Y, center.Z()), Inside: true}, true
	}
	return cape.Hit{
		Point:  cape.V3(info.Point.X, info.Point.Y, center.Z()),
		Inside: info.Distance < 0,
	}, true
}

const spineEpsilonSq = 1e-12

func degenerate(info *cp.PointQueryInfo, p cp.Vector) bool {
	if math.IsNaN(info.Point.X) || math.IsNaN(info.Point.Y) {
		return true
	}
	return info.Distance < 0 && info.Point.DistanceSq(p) < spineEpsilonSq
}

// CPSpace exposes the underlying Chipmunk space for debug drawing. Callers
// must not mutate it.
func (s *Space) CPSpace() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// processLayerTiles merges runs of solid tiles into maximal rectangles and
// adds one box per rectangle. Hazard tiles become sensors.
func (s *Space) processLayerTiles(level *levels.Level, layer []int) int {
	w, h := level.Width, level.Height
	processed := make([]bool, w*h)
	added := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if processed[idx] {
				continue
			}
			tile := layer[idx]
			if tile == levels.TileEmpty {
				processed[idx] = true
				continue
			}

			if tile == levels.TileHazard {
				left, bottom, _, _ := level.TileRect(x, y, 1, 1)
				s.AddHazard(left, bottom, level.TileSize)
				processed[idx] = true
				added++
				continue
			}

			runW := 1
			for x+runW < w {
				idx2 := y*w + x + runW
				v := layer[idx2]
				if processed[idx2] || v == levels.TileEmpty || v == levels.TileHazard {
					break
				}
				runW++
			}

			runH := 1
		heightLoop:
			for y+runH < h {
				for xi := x; xi < x+runW; xi++ {
					idx2 := (y+runH)*w + xi
					v := layer[idx2]
					if processed[idx2] || v == levels.TileEmpty || v == levels.TileHazard {
						break heightLoop
					}
				}
				runH++
			}

			s.AddBox(level.TileRect(x, y, runW, runH))
			added++

			for yy := y; yy < y+runH; yy++ {
				for xx := x; xx < x+runW; xx++ {
					processed[yy*w+xx] = true
				}
			}
		}
	}
	return added
}
