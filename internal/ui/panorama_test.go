package ui

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{360, 0},
		{350, -10},
		{-190, 170},
		{540, 180},
	}

	for _, tt := range tests {
		got := normalizeAngle(tt.input)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLerpAngle_ShortestPath(t *testing.T) {
	tests := []struct {
		from, to, t float64
		expected    float64
	}{
		{0, 90, 0.5, 45},
		{350, 10, 0.5, 360}, // through north, not the long way
		{10, 350, 1.0, -10},
		{90, 270, 0.25, 135},
	}

	for _, tt := range tests {
		got := lerpAngle(tt.from, tt.to, tt.t)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("lerpAngle(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.expected)
		}
	}
}

func TestLayoutMapping(t *testing.T) {
	l := layout{cols: 100, rows: 40, cellW: 8, cellH: 16}

	if got := l.panoRows(); got != 37 {
		t.Errorf("panoRows = %d, want 37", got)
	}
	if vp := l.viewport(); vp.Width != 800 || vp.Height != 592 {
		t.Errorf("viewport = %+v, want 800x592", vp)
	}

	p := l.pointer(50, 30)
	if p.X != 404 || p.Y != 488 {
		t.Errorf("pointer(50, 30) = %+v, want 404,488", p)
	}
	if col, row := l.cell(p); col != 50 || row != 30 {
		t.Errorf("cell(pointer(50, 30)) = %d,%d", col, row)
	}

	s := l.surface(projection.View{Zoom: 1})
	if s.Origin.Y != 16 || s.View.Viewport != l.viewport() {
		t.Errorf("surface = %+v", s)
	}
}

func TestHandleRegion(t *testing.T) {
	l := layout{cols: 100, rows: 40, cellW: 8, cellH: 16}
	r := l.handleRegion()

	want := drag.Rect{Left: 16, Top: 0, Right: 72, Bottom: 16}
	if r != want {
		t.Errorf("handleRegion = %+v, want %+v", r, want)
	}

	for col := 0; col < 12; col++ {
		on := l.onHandle(col, 0)
		if want := col >= handleCol && col < handleCol+7; on != want {
			t.Errorf("onHandle(%d, 0) = %v, want %v", col, on, want)
		}
		if on && !r.Contains(l.pointer(col, 0)) {
			t.Errorf("handle cell %d outside handle region", col)
		}
	}
	if l.onHandle(3, 1) {
		t.Error("handle is on the toolbar row only")
	}
}

func newTestPanorama(t *testing.T) (PanoramaModel, *state.Manager) {
	t.Helper()
	st := state.NewManager(state.DefaultConfig())
	st.SetLocation(annotation.DemoLocation)
	lay := layout{cols: 100, rows: 40, cellW: 8, cellH: 16}
	st.SetViewport(lay.viewport())

	m := NewPanoramaModel(st, drag.DefaultConfig()).SetLayout(lay)
	pins := annotation.DemoAnnotations(time.Now())
	for i := range pins {
		origin := annotation.DemoLocation
		pins[i].Origin = &origin
	}
	return m.SetPins(pins), st
}

func TestFocusAnimatesToPin(t *testing.T) {
	m, st := newTestPanorama(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("focusing a pin should start the animation")
	}
	a, ok := m.Focused()
	if !ok || a.ID != "demo1" {
		t.Fatalf("focused = %+v, want demo1", a)
	}

	m.animStart = time.Now().Add(-time.Second)
	m, cmd = m.Update(animTickMsg(time.Now()))
	if cmd != nil {
		t.Error("finished animation should stop ticking")
	}

	want := a.PovFrom(annotation.DemoLocation)
	got := st.Pov()
	if math.Abs(normalizeAngle(got.Heading-want.Heading)) > 1e-6 || math.Abs(got.Pitch-want.Pitch) > 1e-6 {
		t.Errorf("camera at %+v, want %+v", got, want)
	}

	// shift+tab wraps to the last pin.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if a, _ := m.Focused(); a.ID != "demo5" {
		t.Errorf("focused = %s after shift+tab, want demo5", a.ID)
	}
}

func TestSetPinsKeepsFocus(t *testing.T) {
	m, _ := newTestPanorama(t)
	m = m.FocusID("demo3")

	pins := m.Pins()
	m = m.SetPins(pins[2:])
	if a, ok := m.Focused(); !ok || a.ID != "demo3" {
		t.Errorf("focus lost after reload: %+v", a)
	}

	m = m.SetPins(pins[3:])
	if _, ok := m.Focused(); ok {
		t.Error("focus should clear when the pin goes away")
	}
}

func TestOverlayToggle(t *testing.T) {
	m, _ := newTestPanorama(t)
	if !m.Overlays() {
		t.Fatal("overlays start on")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	if m.Overlays() {
		t.Error("o should hide overlays")
	}
}

func TestPinCellsClamp(t *testing.T) {
	m, st := newTestPanorama(t)
	view := st.View()

	if n := m.pinCells(-80, view); n < 1 || n > maxPinCells {
		t.Errorf("pinCells(-80) = %d, want within 1..%d", n, maxPinCells)
	}
	if n := m.pinCells(10, view); n < 1 {
		t.Errorf("pinCells above the horizon = %d, want at least 1", n)
	}
	if near, far := m.pinCells(-60, view), m.pinCells(-5, view); near < far {
		t.Errorf("near pin (%d cells) smaller than far pin (%d cells)", near, far)
	}
}

func TestPanoramaViewSize(t *testing.T) {
	m, _ := newTestPanorama(t)
	marker := &drag.Marker{Position: projection.Pixel{X: 404, Y: 488}, Scale: 1, Snapped: true}

	out := m.View(nil, marker)
	lines := 1
	for _, r := range out {
		if r == '\n' {
			lines++
		}
	}
	if lines != 37 {
		t.Errorf("rendered %d rows, want 37", lines)
	}
}
