package main

import (
	"image/color"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

type pauseAction struct {
	label string
	do    func()
}

func (g *Game) pauseActions() []pauseAction {
	return []pauseAction{
		{"Resume", func() { g.paused = false }},
		{"Reset cape", func() {
			g.scenario.Runner.Reset()
			g.paused = false
		}},
		{"Toggle wind", g.toggleWind},
		{"Toggle mouse anchor", g.toggleMouse},
		{"Toggle geometry", func() { g.geometry = !g.geometry }},
	}
}

// NewPauseUI builds the centered pause panel listing g.pauseActions.
func NewPauseUI(g *Game) *ebitenui.UI {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	rowCenter := widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 24, Right: 24}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/3, baseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text("Paused: "+g.scenario.Source, &face, colornames.Gold),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(rowCenter)),
	))

	idle := imageui.NewNineSliceColor(colornames.Darkslategray)
	hover := imageui.NewNineSliceColor(colornames.Slategray)
	labels := &widget.ButtonTextColor{Idle: colornames.White}
	stretch := rowCenter
	stretch.Stretch = true
	for _, a := range g.pauseActions() {
		do := a.do
		panel.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: idle, Hover: hover, Pressed: idle}),
			widget.ButtonOpts.Text(a.label, &face, labels),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(stretch)),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { do() }),
		))
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}
