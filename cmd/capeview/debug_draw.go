package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/cape/collision"
	"github.com/milk9111/cape/common"
)

const (
	geometryStroke = 1.5
	debugDotSize   = 4
)

func drawGeometry(space *collision.Space, cam camera, screen *ebiten.Image) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space.CPSpace(), &geometryDrawer{screen: screen, cam: cam})
}

// geometryDrawer implements cp.Drawer against an ebiten image.
type geometryDrawer struct {
	screen *ebiten.Image
	cam    camera
}

func (d *geometryDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *geometryDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *geometryDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *geometryDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

// DrawDot sizes are in pixels, not world units.
func (d *geometryDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.cam.cpToScreen(pos)
	half := size / 2
	c := toNRGBA(fill)
	ebitenutil.DrawLine(d.screen, x-half, y, x+half, y, c)
	ebitenutil.DrawLine(d.screen, x, y-half, x, y+half, c)
}

func (d *geometryDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *geometryDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// Sensors are hazards; tint them so they stand out from solid geometry.
func (d *geometryDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Sensor() {
		return cp.FColor{R: 1, G: 0.3, B: 0.1, A: 0.8}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *geometryDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *geometryDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *geometryDrawer) Data() interface{} {
	return nil
}

func (d *geometryDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.cam.cpToScreen(a)
	x2, y2 := d.cam.cpToScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), geometryStroke, toNRGBA(c), true)
}

func (d *geometryDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i, v := range verts {
		d.drawLine(v, verts[(i+1)%len(verts)], c)
	}
}

func (d *geometryDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	x, y := d.cam.cpToScreen(center)
	r := float32(radius * d.cam.Zoom)
	vector.StrokeCircle(d.screen, float32(x), float32(y), r, geometryStroke, toNRGBA(c), true)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	channel := func(v float32) uint8 { return uint8(common.Clamp01(float64(v)) * 255) }
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}
