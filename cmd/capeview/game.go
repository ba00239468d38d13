package main

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/common"
	"github.com/milk9111/cape/prefabs"
	"github.com/milk9111/cape/sim"
	"golang.org/x/image/colornames"
)

// mouseMaxSpeed keeps a flicked cursor from launching the cape off screen.
const mouseMaxSpeed = 12.0

type Game struct {
	frames int

	scenario *sim.Scenario
	cam      camera
	mouse    cape.Vec3
	follow   bool
	paused   bool
	debug    bool
	geometry bool
	poll     bool
	wind     bool

	pauseUI *ebitenui.UI
	watcher *prefabs.Watcher
	copier  *snapshotCopier

	prev, cur, drawn []cape.Vec3
	lastTick         int
}

func NewGame(name string, debug, hotReload bool, watcher *prefabs.Watcher) (*Game, error) {
	s, err := sim.LoadScenario(name)
	if err != nil {
		return nil, err
	}
	g := &Game{
		scenario: s,
		debug:    debug,
		geometry: true,
		poll:     hotReload && watcher == nil,
		wind:     true,
		watcher:  watcher,
		copier:   newSnapshotCopier(),
	}
	g.adopt(s)
	return g, nil
}

// adopt swaps in a (re)built scenario and reframes the camera.
func (g *Game) adopt(s *sim.Scenario) {
	g.scenario = s
	g.cam = frameScenario(s)
	g.cur = s.Runner.Positions(g.cur)
	g.prev = append(g.prev[:0], g.cur...)
	g.lastTick = s.Runner.Ticks()
	g.pauseUI = NewPauseUI(g)
	if !g.wind {
		g.applyWind()
	}
}

func (g *Game) rebuild() {
	var opts []sim.Option
	if g.follow {
		opts = append(opts, sim.WithAnchor(cape.AnchorFunc(func() cape.Vec3 { return g.mouse })), sim.WithMaxSpeed(mouseMaxSpeed))
	}
	s, err := sim.LoadScenario(g.scenario.Source, opts...)
	if err != nil {
		log.Printf("Game: rebuild %s: %v", g.scenario.Source, err)
		return
	}
	g.adopt(s)
}

func (g *Game) toggleMouse() {
	g.follow = !g.follow
	g.rebuild()
}

func (g *Game) toggleWind() {
	g.wind = !g.wind
	g.applyWind()
}

func (g *Game) applyWind() {
	cfg, err := g.scenario.Cape.Config()
	if err != nil {
		log.Printf("Game: %v", err)
		return
	}
	if !g.wind {
		cfg.WindFactor = 0
	}
	if err := g.scenario.Runner.Retune(cfg); err != nil {
		log.Printf("Game: retune: %v", err)
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		// without fsnotify, stat the overrides about once a second
		if g.poll && g.frames%ebiten.TPS() == 0 {
			if change, ok := g.scenario.Changed(); ok {
				g.reload(change)
			}
		}
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(change)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("Game: watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(change prefabs.Change) {
	next, err := g.scenario.Reload(change)
	if err != nil {
		log.Printf("Game: reload %s: %v", change.Path, err)
		return
	}
	if next != g.scenario {
		g.adopt(next)
	}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.scenario.Runner.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.toggleMouse()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.toggleWind()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copier.Copy(g.scenario.Source, g.scenario.Runner.Ticks(), g.cur)
	}

	cx, cy := ebiten.CursorPosition()
	g.mouse = g.cam.toWorld(float64(cx), float64(cy))

	if g.scenario.Runner.Advance(time.Second/time.Duration(ebiten.TPS())) > 0 {
		g.prev = append(g.prev[:0], g.cur...)
		g.cur = g.scenario.Runner.Positions(g.cur)
	}
	if !g.follow && g.scenario.Level == nil && len(g.cur) > 0 {
		cfg := g.scenario.Runner.Rig().Chain().Config()
		target := g.cur[0]
		target[1] -= float64(cfg.SegmentCount) * cfg.SegmentLength / 2
		g.cam.follow(target, followSmooth)
	}
	return nil
}

// interpolated blends the last two snapshots by the runner's leftover
// accumulator so motion stays smooth when the tick rate differs from TPS.
func (g *Game) interpolated() []cape.Vec3 {
	if len(g.prev) != len(g.cur) {
		return g.cur
	}
	alpha := g.scenario.Runner.Alpha()
	g.drawn = g.drawn[:0]
	for i := range g.cur {
		var p cape.Vec3
		for k := range p {
			p[k] = common.Lerp(g.prev[i][k], g.cur[i][k], alpha)
		}
		g.drawn = append(g.drawn, p)
	}
	return g.drawn
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	if g.geometry {
		drawGeometry(g.scenario.Space, g.cam, screen)
	}
	g.drawCape(screen, g.interpolated())

	if g.debug {
		cfg := g.scenario.Runner.Rig().Chain().Config()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"Frames: %d    FPS: %.2f    Tick: %d\nScenario: %s  segments=%d  iterations=%d  wind=%v  mouse=%v\n[P] pause  [R] reset  [W] wind  [M] mouse  [G] overlay  [C] copy",
			g.frames, ebiten.ActualFPS(), g.scenario.Runner.Ticks(),
			g.scenario.Source, cfg.SegmentCount, cfg.Iterations, g.wind, g.follow))
	}

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawCape(screen *ebiten.Image, positions []cape.Vec3) {
	if len(positions) == 0 {
		return
	}
	lr := g.scenario.Cape.LineRender
	width := lr.Width
	if width <= 0 {
		width = 2
	}
	var clr color.Color = colornames.Crimson
	if lr.Color != nil {
		clr = lr.Color.Color
	}

	for i := 1; i < len(positions); i++ {
		x0, y0 := g.cam.vecToScreen(positions[i-1])
		x1, y1 := g.cam.vecToScreen(positions[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, lr.AntiAlias)
	}
	radius := float32(g.scenario.Runner.Rig().Chain().Config().Radius * g.cam.Zoom)
	for i, p := range positions {
		x, y := g.cam.vecToScreen(p)
		if i == 0 {
			vector.DrawFilledCircle(screen, x, y, max(radius, 3), colornames.Gold, true)
			continue
		}
		if g.debug {
			vector.StrokeCircle(screen, x, y, radius, 1, colornames.Lightgrey, true)
		}
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
