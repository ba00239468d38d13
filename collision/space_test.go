package collision

import (
	"math"
	"sync"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/levels"
)

const clearance = 0.05

func TestQueryOverlapBox(t *testing.T) {
	s := NewSpace()
	s.AddBox(-1, -1, 1, 0)

	cases := []struct {
		name   string
		center cape.Vec3
		hit    bool
		inside bool
		point  cape.Vec3
	}{
		{"far_above", cape.V3(0.2, 1, 0), false, false, cape.Vec3{}},
		{"within_clearance", cape.V3(0.2, 0.03, 0), true, false, cape.V3(0.2, 0, 0)},
		{"just_inside", cape.V3(0.2, -0.01, 0), true, true, cape.V3(0.2, 0, 0)},
		{"keeps_z", cape.V3(0.2, 0.03, 7), true, false, cape.V3(0.2, 0, 7)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := s.QueryOverlap(tc.center, clearance)
			if ok != tc.hit {
				t.Fatalf("hit=%v, want %v", ok, tc.hit)
			}
			if !ok {
				return
			}
			if hit.Inside != tc.inside {
				t.Fatalf("inside=%v, want %v", hit.Inside, tc.inside)
			}
			if hit.Point.Sub(tc.point).Len() > 1e-9 {
				t.Fatalf("closest point %+v, want %+v", hit.Point, tc.point)
			}
		})
	}
}

func TestQueryOverlapIgnoresSensors(t *testing.T) {
	s := NewSpace()
	s.AddHazard(0, 0, 1)
	if _, ok := s.QueryOverlap(cape.V3(0.5, 0.2, 0), clearance); ok {
		t.Fatalf("hazard sensors must not collide")
	}
}

func TestQueryOverlapShapes(t *testing.T) {
	s := NewSpace()
	s.AddCircle(5, 5, 1)
	s.AddSegment(-5, 0, -3, 0, 0.1)
	s.AddPolygon([]cp.Vector{{X: 10, Y: 0}, {X: 12, Y: 0}, {X: 11, Y: 2}})

	cases := []struct {
		name   string
		center cape.Vec3
	}{
		{"circle", cape.V3(5, 6.02, 0)},
		{"segment", cape.V3(-4, 0.12, 0)},
		{"polygon", cape.V3(11, 0.5, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := s.QueryOverlap(tc.center, clearance); !ok {
				t.Fatalf("expected a hit at %+v", tc.center)
			}
		})
	}
}

func TestChainRestsOnBox(t *testing.T) {
	s := NewSpace()
	s.AddBox(-2, -2, 2, -0.5)

	cfg := cape.DefaultConfig()
	chain, err := cape.NewChain(cfg, cape.Vec3{}, s)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 300; n++ {
		chain.Step(cape.Vec3{}, cape.V3(0.5, 0, 0), 1.0/60)
		for i := 1; i < chain.Len(); i++ {
			y := chain.Segment(i).Current.Y()
			if y < -0.5-cfg.Radius {
				t.Fatalf("step %d: segment %d sank into the floor: y=%v", n, i, y)
			}
		}
	}
	if end := chain.Segment(chain.Len() - 1).Current; end.X() < 0.5 {
		t.Fatalf("chain should drape along the floor, free end at %+v", end)
	}
}

func TestNewSpaceFromLevel(t *testing.T) {
	lvl, err := levels.Load("room")
	if err != nil {
		t.Fatal(err)
	}
	s := NewSpaceFromLevel(lvl)

	// floor rows 10 and 11 have their top face at y = 2 tiles
	floorTop := 2 * lvl.TileSize
	hit, ok := s.QueryOverlap(cape.V3(1.5, floorTop+0.01, 0), clearance)
	if !ok {
		t.Fatalf("expected to touch the floor")
	}
	if math.Abs(hit.Point.Y()-floorTop) > 1e-9 {
		t.Fatalf("floor contact at y=%v, want %v", hit.Point.Y(), floorTop)
	}

	x, y := lvl.Spawn()
	if _, ok := s.QueryOverlap(cape.V3(x, y, 0), clearance); ok {
		t.Fatalf("spawn tile should be open space")
	}
}

func TestQueryOverlapConcurrentReaders(t *testing.T) {
	s := NewSpace()
	s.AddBox(-1, -1, 1, 0)

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				x := float64(g)*0.1 - 0.4
				if _, ok := s.QueryOverlap(cape.V3(x, 0.02, 0), clearance); !ok {
					errs <- "missed contact"
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

func TestQueryOverlapAtShapeCentre(t *testing.T) {
	cases := []struct {
		name   string
		add    func(s *Space)
		center cape.Vec3
		depth  float64
	}{
		{"circle_centre", func(s *Space) { s.AddCircle(0, -1, 0.5) }, cape.V3(0, -1, 0), 0.5},
		{"capsule_spine", func(s *Space) { s.AddSegment(-1, 0, 1, 0, 0.2) }, cape.V3(0.3, 0, 0), 0.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSpace()
			tc.add(s)
			hit, ok := s.QueryOverlap(tc.center, clearance)
			if !ok || !hit.Inside {
				t.Fatalf("expected an inside hit, got %+v ok=%v", hit, ok)
			}
			if !cape.Finite(hit.Point) {
				t.Fatalf("surface point is not finite: %+v", hit.Point)
			}
			if d := hit.Point.Sub(tc.center).Len(); math.Abs(d-tc.depth) > 1e-9 {
				t.Fatalf("surface point %v from centre, want %v", d, tc.depth)
			}
		})
	}
}

func TestResolveCollisionsLeavesCircleCentre(t *testing.T) {
	s := NewSpace()
	s.AddCircle(0, -1, 0.5)

	cfg := cape.DefaultConfig()
	cfg.SegmentCount = 2
	cfg.SegmentLength = 1
	cfg.Radius = clearance
	chain, err := cape.NewChain(cfg, cape.Vec3{}, s)
	if err != nil {
		t.Fatal(err)
	}
	chain.ResolveCollisions()

	got := chain.Segment(1).Current
	if d := got.Sub(cape.V3(0, -1, 0)).Len(); d < 0.5+clearance-1e-9 {
		t.Fatalf("segment left inside the circle at %+v (distance %v)", got, d)
	}
}
