package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/sim"
)

const frameInterval = 33 * time.Millisecond

type app struct {
	screen        tcell.Screen
	width, height int

	scenario *sim.Scenario
	view     viewport
	solid    []bool

	capeStyle   tcell.Style
	anchorStyle tcell.Style
	solidStyle  tcell.Style
	textStyle   tcell.Style

	positions []cape.Vec3

	simCancel context.CancelFunc
	simDone   sync.WaitGroup
	paused    bool
}

func newApp(s *sim.Scenario) (*app, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	a := &app{
		screen:      screen,
		scenario:    s,
		capeStyle:   tcell.StyleDefault.Foreground(tcell.ColorRed),
		anchorStyle: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
		solidStyle:  tcell.StyleDefault.Foreground(tcell.ColorGray),
		textStyle:   tcell.StyleDefault.Foreground(tcell.ColorWhite),
	}
	if c := s.Cape.LineRender.Color; c != nil {
		r, g, b, _ := c.RGBA()
		a.capeStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8)))
	}
	a.handleResize()
	return a, nil
}

func (a *app) handleResize() {
	a.width, a.height = a.screen.Size()
	a.view = fitViewport(a.scenario, a.width, a.height-1)
	a.solid = rasterize(a.scenario.Space, a.view, a.width, a.height-1)
	a.screen.Sync()
}

func (a *app) startSim() {
	ctx, cancel := context.WithCancel(context.Background())
	a.simCancel = cancel
	a.simDone.Add(1)
	go func() {
		defer a.simDone.Done()
		_ = a.scenario.Runner.RunRealtime(ctx)
	}()
	a.paused = false
}

func (a *app) stopSim() {
	if a.simCancel != nil {
		a.simCancel()
		a.simDone.Wait()
		a.simCancel = nil
	}
	a.paused = true
}

func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if a.paused {
				a.startSim()
			} else {
				a.stopSim()
			}
		case 'r':
			a.scenario.Runner.Reset()
		case '.':
			if a.paused {
				a.scenario.Runner.Step()
			}
		}
	case *tcell.EventResize:
		a.handleResize()
	}
	return true
}

func (a *app) draw() {
	a.screen.Clear()

	rows := a.height - 1
	for y := 0; y < rows; y++ {
		for x := 0; x < a.width; x++ {
			if a.solid[y*a.width+x] {
				a.screen.SetContent(x, y, '▒', nil, a.solidStyle)
			}
		}
	}

	a.positions = a.scenario.Runner.Positions(a.positions)
	for i := 1; i < len(a.positions); i++ {
		x0, y0 := a.view.cell(a.positions[i-1])
		x1, y1 := a.view.cell(a.positions[i])
		line(x0, y0, x1, y1, func(x, y int) {
			if x >= 0 && x < a.width && y >= 0 && y < rows {
				a.screen.SetContent(x, y, '·', nil, a.capeStyle)
			}
		})
	}
	for i, p := range a.positions {
		x, y := a.view.cell(p)
		if x < 0 || x >= a.width || y < 0 || y >= rows {
			continue
		}
		r, style := 'o', a.capeStyle
		if i == 0 {
			r, style = '@', a.anchorStyle
		}
		a.screen.SetContent(x, y, r, nil, style)
	}

	state := "running"
	if a.paused {
		state = "paused (. steps)"
	}
	status := fmt.Sprintf(" %s  tick %d  %s  [space] pause  [r] reset  [q] quit", a.scenario.Source, a.scenario.Runner.Ticks(), state)
	for i, r := range status {
		if i >= a.width {
			break
		}
		a.screen.SetContent(i, a.height-1, r, nil, a.textStyle.Reverse(true))
	}

	a.screen.Show()
}

func (a *app) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	a.startSim()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

func (a *app) cleanup() {
	a.stopSim()
	a.screen.Fini()
}

func main() {
	scenario := flag.String("scenario", "figure8", "scenario name in prefabs/scenarios (basename, .yaml optional)")
	flag.Parse()

	s, err := sim.LoadScenario(*scenario)
	if err != nil {
		log.Fatal(err)
	}

	a, err := newApp(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "capetty: failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer a.cleanup()

	a.run()
}
