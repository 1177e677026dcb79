package ui

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/grid"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
)

const (
	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Pin glyphs
	glyphPin        = '●'
	glyphPinFocused = '◆'
	glyphStem       = '│'
	glyphMarker     = '▼'
	glyphMarkerFree = '▽'
	glyphGrid       = '·'
	glyphHorizon    = '─'

	maxPinCells = 4

	colorBackground = "236"
	colorHorizon    = "60" // muted purple
	colorCardinal   = "252"
	colorStem       = "245"
	colorLabel      = "229" // bright gold
	colorMarkerFree = "244"
)

// pinColors maps the palette onto terminal colors.
var pinColors = map[annotation.PinColor]lipgloss.Color{
	annotation.ColorRed:    "#EF4444",
	annotation.ColorOrange: "#FFB05B",
	annotation.ColorYellow: "#EAB308",
	annotation.ColorGreen:  "#22C55E",
	annotation.ColorBlue:   "#3B82F6",
	annotation.ColorIndigo: "#6366F1",
	annotation.ColorViolet: "#A855F7",
	annotation.ColorGray:   "#848484",
}

var cardinals = []struct {
	label   string
	heading float64
}{
	{"N", 0}, {"NE", 45}, {"E", 90}, {"SE", 135},
	{"S", 180}, {"SW", 225}, {"W", 270}, {"NW", 315},
}

// PanoramaModel renders the camera view with pins, the ground grid and the
// drag marker. The camera itself lives in the state manager.
type PanoramaModel struct {
	state   *state.Manager
	dragCfg drag.Config
	lay     layout

	pins     []annotation.Annotation
	focusIdx int // -1 when nothing is focused
	overlays bool

	// Animation state
	animating bool
	animFrom  projection.Pov
	animTo    projection.Pov
	animStart time.Time
}

// NewPanoramaModel creates a panorama view over the given camera state.
func NewPanoramaModel(st *state.Manager, dragCfg drag.Config) PanoramaModel {
	return PanoramaModel{
		state:    st,
		dragCfg:  dragCfg,
		focusIdx: -1,
		overlays: true,
	}
}

// SetLayout updates the cell geometry.
func (m PanoramaModel) SetLayout(l layout) PanoramaModel {
	m.lay = l
	return m
}

// SetPins replaces the visible pins, keeping focus on the same pin if it
// survived.
func (m PanoramaModel) SetPins(pins []annotation.Annotation) PanoramaModel {
	focusedID := ""
	if a, ok := m.Focused(); ok {
		focusedID = a.ID
	}
	m.pins = pins
	m.focusIdx = -1
	if focusedID != "" {
		m = m.FocusID(focusedID)
	}
	return m
}

// Pins returns the visible pins.
func (m PanoramaModel) Pins() []annotation.Annotation {
	return m.pins
}

// Focused returns the focused pin.
func (m PanoramaModel) Focused() (annotation.Annotation, bool) {
	if m.focusIdx < 0 || m.focusIdx >= len(m.pins) {
		return annotation.Annotation{}, false
	}
	return m.pins[m.focusIdx], true
}

// FocusID focuses the pin with the given id without moving the camera.
func (m PanoramaModel) FocusID(id string) PanoramaModel {
	for i, a := range m.pins {
		if a.ID == id {
			m.focusIdx = i
			return m
		}
	}
	return m
}

// Overlays reports whether pins are drawn.
func (m PanoramaModel) Overlays() bool {
	return m.overlays
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m PanoramaModel) Update(msg tea.Msg) (PanoramaModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return m.focusNext()
		case "shift+tab":
			return m.focusPrev()
		case "o":
			m.overlays = !m.overlays
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m PanoramaModel) focusNext() (PanoramaModel, tea.Cmd) {
	if len(m.pins) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.pins)
	return m.startAnimation()
}

func (m PanoramaModel) focusPrev() (PanoramaModel, tea.Cmd) {
	if len(m.pins) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.pins) - 1
	}
	return m.startAnimation()
}

func (m PanoramaModel) startAnimation() (PanoramaModel, tea.Cmd) {
	a, ok := m.Focused()
	if !ok {
		return m, nil
	}

	m.animating = true
	m.animFrom = m.state.Pov()
	m.animTo = m.pinPov(a)
	m.animStart = time.Now()

	return m, animTick()
}

func (m PanoramaModel) updateAnimation() (PanoramaModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.state.SetPov(m.animTo)
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.state.SetPov(projection.Pov{
		Heading: lerpAngle(m.animFrom.Heading, m.animTo.Heading, t),
		Pitch:   lerp(m.animFrom.Pitch, m.animTo.Pitch, t),
	})
	return m, animTick()
}

// pinPov is where a pin appears from the current viewer location. Until the
// location is known the stored direction is all there is.
func (m PanoramaModel) pinPov(a annotation.Annotation) projection.Pov {
	if loc, ok := m.state.Location(); ok {
		return a.PovFrom(loc)
	}
	return projection.Pov{Heading: a.Heading, Pitch: a.Pitch}
}

// pinCells is how many rows a pin spans, from its physical scale.
func (m PanoramaModel) pinCells(pitch float64, view projection.View) int {
	scale := drag.MarkerScale(m.dragCfg, pitch, view)
	n := int(math.Round(scale * m.dragCfg.PinPixelHeight / m.lay.cellH))
	return max(1, min(maxPinCells, n))
}

// canvas is a grid of glyphs and their colors.
type canvas struct {
	cols, rows int
	glyphs     [][]rune
	colors     [][]lipgloss.Color
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows}
	c.glyphs = make([][]rune, rows)
	c.colors = make([][]lipgloss.Color, rows)
	for y := 0; y < rows; y++ {
		c.glyphs[y] = make([]rune, cols)
		c.colors[y] = make([]lipgloss.Color, cols)
		for x := 0; x < cols; x++ {
			c.glyphs[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || x >= c.cols || y < 0 || y >= c.rows {
		return
	}
	c.glyphs[y][x] = r
	c.colors[y][x] = color
}

func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			style := lipgloss.NewStyle().Foreground(c.colors[y][x])
			b.WriteString(style.Render(string(c.glyphs[y][x])))
		}
		if y < c.rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View renders the panorama. marks are grid samples in surface pixels;
// marker, when set, is the drag marker in screen pixels.
func (m PanoramaModel) View(marks []grid.Mark, marker *drag.Marker) string {
	rows := m.lay.panoRows()
	if m.lay.cols <= 0 || rows <= 0 {
		return ""
	}

	view := m.state.View()
	view.Viewport = m.lay.viewport()
	c := newCanvas(m.lay.cols, rows)

	m.drawHorizon(c, view)
	m.drawGrid(c, marks)
	if m.overlays {
		m.drawPins(c, view)
	}
	if marker != nil {
		m.drawMarker(c, *marker)
	}

	return c.String()
}

func (m PanoramaModel) drawHorizon(c *canvas, view projection.View) {
	// Sample densely enough for one hit per column.
	step := projection.FieldOfView(view.Zoom) / float64(2*m.lay.cols)
	for h := 0.0; h < 360; h += step {
		p, ok := projection.PovToPixel(projection.Pov{Heading: h}, view)
		if !ok {
			continue
		}
		x, y := m.lay.cell(p)
		c.set(x, y, glyphHorizon, colorHorizon)
	}

	for _, card := range cardinals {
		p, ok := projection.PovToPixel(projection.Pov{Heading: card.heading}, view)
		if !ok {
			continue
		}
		x, y := m.lay.cell(p)
		c.text(x, y, card.label, colorCardinal)
	}
}

func (m PanoramaModel) drawGrid(c *canvas, marks []grid.Mark) {
	for _, mk := range marks {
		x, y := m.lay.cell(mk.Pixel)
		c.set(x, y, glyphGrid, gridColor(mk.Fade))
	}
}

// gridColor fades grid samples into the distance.
func gridColor(fade float64) lipgloss.Color {
	switch {
	case fade > 0.66:
		return "250"
	case fade > 0.33:
		return "244"
	default:
		return "239"
	}
}

func (m PanoramaModel) drawPins(c *canvas, view projection.View) {
	// Draw unfocused first so the focused pin wins overlaps.
	order := make([]int, 0, len(m.pins))
	for i := range m.pins {
		if i != m.focusIdx {
			order = append(order, i)
		}
	}
	if m.focusIdx >= 0 && m.focusIdx < len(m.pins) {
		order = append(order, m.focusIdx)
	}

	for _, i := range order {
		a := m.pins[i]
		pov := m.pinPov(a)
		p, ok := projection.PovToPixel(pov, view)
		if !ok {
			continue
		}

		x, y := m.lay.cell(p)
		n := m.pinCells(pov.Pitch, view)
		for k := 1; k < n; k++ {
			c.set(x, y-k+1, glyphStem, colorStem)
		}

		head := glyphPin
		focused := i == m.focusIdx
		if focused {
			head = glyphPinFocused
		}
		headY := y - n + 1
		c.set(x, headY, head, pinColor(a.Color))

		if focused && a.Title != "" {
			c.text(x+2, headY, "◄ "+a.Title, colorLabel)
		}
	}
}

func (m PanoramaModel) drawMarker(c *canvas, mk drag.Marker) {
	x, y := m.lay.cell(mk.Position)
	y -= toolbarRows

	if !mk.Snapped {
		c.set(x, y, glyphMarkerFree, colorMarkerFree)
		return
	}

	n := max(1, min(maxPinCells, int(math.Round(mk.Scale*m.dragCfg.PinPixelHeight/m.lay.cellH))))
	for k := 1; k < n; k++ {
		c.set(x, y-k+1, glyphStem, colorStem)
	}
	c.set(x, y-n+1, glyphMarker, pinColor(annotation.ColorRed))
}

func pinColor(c annotation.PinColor) lipgloss.Color {
	if col, ok := pinColors[c]; ok {
		return col
	}
	return pinColors[annotation.ColorRed]
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
