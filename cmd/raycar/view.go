package main

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/engine"
	"github.com/lixenwraith/raycar/vmath"
)

// Top-down view: world X runs right to left on screen (+X is chassis left), Z runs up
const (
	cellsPerMeterX = 2.0
	cellsPerMeterZ = 1.0
	gridSpacing    = 4.0
)

var (
	styleGrid    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleChassis = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleWheel   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleAir     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

type view struct {
	screen tcell.Screen
	paused atomic.Bool
}

func newView(s tcell.Screen) *view {
	return &view{screen: s}
}

func (v *view) setPaused(p bool) { v.paused.Store(p) }

// draw is the scheduler frame hook
func (v *view) draw(e *engine.Engine, _ int) {
	s := v.screen
	s.Clear()
	w, h := s.Size()

	cam, ok := e.CameraTarget()
	if !ok {
		cam = vmath.IdentityTransform()
	}
	project := func(p mgl64.Vec3) (int, int) {
		dx := p.X() - cam.Position.X()
		dz := p.Z() - cam.Position.Z()
		return w/2 - int(math.Round(dx*cellsPerMeterX)), h/2 - int(math.Round(dz*cellsPerMeterZ))
	}

	v.drawGrid(cam, w, h)

	handle, ok := e.Active()
	if ok {
		if c, err := e.Vehicle(handle); err == nil {
			style := styleChassis
			if c.GroundedCount() == 0 {
				style = styleAir
			}
			t := c.Transform()
			he := c.Config().Chassis.HalfExtents
			for _, corner := range []mgl64.Vec3{
				{he.X(), 0, he.Z()}, {-he.X(), 0, he.Z()},
				{he.X(), 0, -he.Z()}, {-he.X(), 0, -he.Z()},
			} {
				x, y := project(t.Point(corner))
				s.SetContent(x, y, '#', nil, style)
			}
			nx, ny := project(t.Point(mgl64.Vec3{0, 0, he.Z() + 0.5}))
			s.SetContent(nx, ny, '^', nil, style)
			for _, wt := range c.WheelTransforms() {
				x, y := project(wt.Position)
				s.SetContent(x, y, 'o', nil, styleWheel)
			}

			hud := fmt.Sprintf("gear %-2s  %6.1f km/h  steer %+5.2f  grounded %d  air %4.1fs",
				c.Gear(), c.Speed()*3.6, c.SteeringAngle(), c.GroundedCount(), c.AirTime())
			v.text(0, 0, hud, styleHUD)
			v.text(0, 1, e.Status().Line(c.Name()), styleGrid)
		}
	}

	footer := "arrows/WASD drive  space handbrake  h horn  m mute  p pause  q quit"
	if v.paused.Load() {
		footer = "PAUSED  " + footer
	}
	v.text(0, h-1, footer, styleHUD)
	s.Show()
}

// drawGrid marks world grid points so motion is visible around the camera
func (v *view) drawGrid(cam vmath.Transform, w, h int) {
	halfX := float64(w) / 2 / cellsPerMeterX
	halfZ := float64(h) / 2 / cellsPerMeterZ
	cx, cz := cam.Position.X(), cam.Position.Z()
	for gx := math.Floor((cx-halfX)/gridSpacing) * gridSpacing; gx <= cx+halfX; gx += gridSpacing {
		for gz := math.Floor((cz-halfZ)/gridSpacing) * gridSpacing; gz <= cz+halfZ; gz += gridSpacing {
			x := w/2 - int(math.Round((gx-cx)*cellsPerMeterX))
			y := h/2 - int(math.Round((gz-cz)*cellsPerMeterZ))
			v.screen.SetContent(x, y, '.', nil, styleGrid)
		}
	}
}

func (v *view) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}
