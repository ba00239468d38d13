package main

import (
	"math"

	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/sim"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2

// viewport maps Y-up world space onto terminal cells, row 0 at the top.
type viewport struct {
	minX, maxY float64
	// world units per column and per row
	sx, sy float64
}

func (v viewport) cell(p cape.Vec3) (int, int) {
	return int(math.Floor((p.X() - v.minX) / v.sx)), int(math.Floor((v.maxY - p.Y()) / v.sy))
}

func (v viewport) world(x, y int) cape.Vec3 {
	return cape.V3(v.minX+(float64(x)+0.5)*v.sx, v.maxY-(float64(y)+0.5)*v.sy, 0)
}

// fitViewport frames the scenario's level, or the reach of the cape around
// its anchor when there is no level.
func fitViewport(s *sim.Scenario, w, h int) viewport {
	var minX, minY, maxX, maxY float64
	if s.Level != nil {
		maxX, maxY = s.Level.WorldSize()
	} else {
		cfg := s.Runner.Rig().Chain().Config()
		reach := float64(cfg.SegmentCount)*cfg.SegmentLength + 0.5
		a := s.Runner.Positions(nil)[0]
		minX, maxX = a.X()-reach, a.X()+reach
		minY, maxY = a.Y()-reach, a.Y()+reach*0.5
	}
	return fitRect(minX, minY, maxX, maxY, w, h)
}

func fitRect(minX, minY, maxX, maxY float64, w, h int) viewport {
	w, h = max(w, 1), max(h, 1)
	sy := math.Max((maxY-minY)/float64(h), cellAspect*(maxX-minX)/float64(w))
	if sy <= 0 {
		sy = 1
	}
	sx := sy / cellAspect
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return viewport{
		minX: cx - sx*float64(w)/2,
		maxY: cy + sy*float64(h)/2,
		sx:   sx,
		sy:   sy,
	}
}

// rasterize marks the cells whose centres lie inside solid geometry.
func rasterize(surface cape.CollisionSurface, v viewport, w, h int) []bool {
	solid := make([]bool, max(w, 0)*max(h, 0))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if hit, ok := surface.QueryOverlap(v.world(x, y), 0); ok && hit.Inside {
				solid[y*w+x] = true
			}
		}
	}
	return solid
}

// line walks the cells between two points with Bresenham's algorithm.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += stepX
		}
		if e2 <= dx {
			e += dx
			y0 += stepY
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
