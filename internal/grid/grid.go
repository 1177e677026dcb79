// Package grid draws the ground-reference overlay shown while a pin is being
// dragged: a square lattice on the ground plane below the camera, projected
// into the current view.
package grid

import (
	"math"

	"github.com/litescript/ls-panopin/internal/projection"
)

// Overlay is a view-synchronized decoration drawn over the panorama.
type Overlay interface {
	Show(view projection.View)
	Hide()
	Visible() bool
	Sync(view projection.View)
	Resize(vp projection.Viewport)
	Render() []Mark
}

// Mark is one projected sample of a grid line.
type Mark struct {
	Pixel    projection.Pixel
	Distance float64 // Ground distance from the viewer, meters
	Fade     float64 // 1 inside the fog start, 0 at the edge of the grid
}

// Config controls the lattice geometry.
type Config struct {
	Spacing      float64 // Distance between lines, meters
	Extent       float64 // Half-width of the grid, meters
	FogStart     float64 // Distance where lines start fading, meters
	CameraHeight float64 // Ground plane depth below the lens, meters
	Samples      int     // Samples per cell along each line
}

// DefaultConfig returns a 5 m grid out to 300 m that fades beyond 50 m.
func DefaultConfig() Config {
	return Config{
		Spacing:      5,
		Extent:       300,
		FogStart:     50,
		CameraHeight: projection.CameraHeight,
		Samples:      2,
	}
}

// nearLimit skips samples almost directly under the lens where the heading is
// undefined.
const nearLimit = 0.5

// Ground is the ground plane lattice.
type Ground struct {
	cfg     Config
	view    projection.View
	visible bool
}

var _ Overlay = (*Ground)(nil)

// NewGround creates a hidden ground grid.
func NewGround(cfg Config) *Ground {
	if cfg.Samples < 1 {
		cfg.Samples = 1
	}
	return &Ground{cfg: cfg}
}

// Show makes the grid visible in the given view.
func (g *Ground) Show(view projection.View) {
	g.view = view
	g.visible = true
}

// Hide removes the grid.
func (g *Ground) Hide() {
	g.visible = false
}

// Visible reports whether the grid is shown.
func (g *Ground) Visible() bool {
	return g.visible
}

// Sync follows camera changes.
func (g *Ground) Sync(view projection.View) {
	g.view = view
}

// Resize follows viewport changes.
func (g *Ground) Resize(vp projection.Viewport) {
	g.view.Viewport = vp
}

// Render projects the lattice into the current view. Samples behind the
// camera or outside the guard band are dropped.
func (g *Ground) Render() []Mark {
	if !g.visible || g.cfg.Spacing <= 0 || g.cfg.Extent <= 0 {
		return nil
	}

	lines := int(math.Floor(g.cfg.Extent / g.cfg.Spacing))
	step := g.cfg.Spacing / float64(g.cfg.Samples)
	steps := int(math.Floor(2 * g.cfg.Extent / step))

	var marks []Mark
	emit := func(east, north float64) {
		pov, dist := GroundPov(east, north, g.cfg.CameraHeight)
		if dist < nearLimit || dist > g.cfg.Extent {
			return
		}
		p, ok := projection.PovToPixel(pov, g.view)
		if !ok {
			return
		}
		marks = append(marks, Mark{Pixel: p, Distance: dist, Fade: g.fade(dist)})
	}

	for i := -lines; i <= lines; i++ {
		offset := float64(i) * g.cfg.Spacing
		for j := 0; j <= steps; j++ {
			along := -g.cfg.Extent + float64(j)*step
			emit(offset, along) // north-south line
			emit(along, offset) // east-west line
		}
	}
	return marks
}

// fade is linear fog between FogStart and Extent.
func (g *Ground) fade(dist float64) float64 {
	start := math.Max(0, math.Min(g.cfg.FogStart, g.cfg.Extent))
	if dist <= start {
		return 1
	}
	if g.cfg.Extent <= start {
		return 0
	}
	return math.Max(0, 1-(dist-start)/(g.cfg.Extent-start))
}

// GroundPov returns the look direction and ground distance to a point on the
// ground plane, given as meters east and north of the viewer.
func GroundPov(east, north, height float64) (projection.Pov, float64) {
	dist := math.Hypot(east, north)
	heading := projection.NormalizeHeading(math.Atan2(east, north) * 180 / math.Pi)
	pitch := -math.Atan2(height, dist) * 180 / math.Pi
	return projection.Pov{Heading: heading, Pitch: pitch}, dist
}
