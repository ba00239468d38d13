package main

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/sim"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	defaultZoom  = 240.0
	viewMargin   = 0.9
	followSmooth = 0.05
)

// camera maps Y-up world units onto the Y-down screen. X and Y are the world
// point at the centre of the screen; Zoom is pixels per world unit.
type camera struct {
	X, Y float64
	Zoom float64
}

// frameScenario fits the level to the screen, or centres the cape's anchor
// when there is no level.
func frameScenario(s *sim.Scenario) camera {
	if s.Level != nil {
		w, h := s.Level.WorldSize()
		zoom := min(baseWidth/w, baseHeight/h) * viewMargin
		return camera{X: w / 2, Y: h / 2, Zoom: zoom}
	}
	a := s.Runner.Positions(nil)[0]
	cfg := s.Runner.Rig().Chain().Config()
	return camera{X: a.X(), Y: a.Y() - float64(cfg.SegmentCount)*cfg.SegmentLength/2, Zoom: defaultZoom}
}

// follow eases the camera toward a world point. smooth is the fraction of
// the remaining distance covered per call.
func (c *camera) follow(target cape.Vec3, smooth float64) {
	c.X += (target.X() - c.X) * smooth
	c.Y += (target.Y() - c.Y) * smooth
}

func (c camera) toScreen(x, y float64) (float64, float64) {
	return (x-c.X)*c.Zoom + baseWidth/2, baseHeight/2 - (y-c.Y)*c.Zoom
}

func (c camera) vecToScreen(v cape.Vec3) (float32, float32) {
	x, y := c.toScreen(v.X(), v.Y())
	return float32(x), float32(y)
}

func (c camera) cpToScreen(v cp.Vector) (float64, float64) {
	return c.toScreen(v.X, v.Y)
}

func (c camera) toWorld(sx, sy float64) cape.Vec3 {
	return cape.V3((sx-baseWidth/2)/c.Zoom+c.X, (baseHeight/2-sy)/c.Zoom+c.Y, 0)
}
