// Package drag implements the pin drag interaction: a pointer drag from a
// toolbar handle that snaps to ground-plane points on the panorama.
package drag

import (
	"math"

	"github.com/litescript/ls-panopin/internal/projection"
)

// State is the lifecycle state of a drag session.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Outcome is how a drag ended.
type Outcome int

const (
	OutcomeNone      Outcome = iota // Session torn down without a release
	OutcomeCommitted                // Dropped on a valid ground point
	OutcomeCancelled                // Released over the reserved region
	OutcomeRejected                 // Released with no valid drop target
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Config holds the tuned constants of the drag interaction.
type Config struct {
	// MinPitch is the highest pitch a drop may snap to, degrees. Keeps drops
	// on or below the visual horizon.
	MinPitch float64

	// CameraHeight is the panorama camera height above ground, meters.
	CameraHeight float64

	// MarkerHeight is the real-world height the pin represents, meters.
	MarkerHeight float64

	// PinPixelHeight is the pin glyph height at scale 1, pixels.
	PinPixelHeight float64

	// MinDistance floors the ground distance used for scaling, meters.
	MinDistance float64

	// ReservedMargin widens the reserved region for hit testing, pixels.
	ReservedMargin float64
}

// DefaultConfig returns the stock drag constants.
func DefaultConfig() Config {
	return Config{
		MinPitch:       -1,
		CameraHeight:   projection.CameraHeight,
		MarkerHeight:   1,
		PinPixelHeight: 14,
		MinDistance:    0.5,
		ReservedMargin: 20,
	}
}

// Rect is a screen-space rectangle with inclusive edges.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Contains reports whether p lies inside or on the rectangle.
func (r Rect) Contains(p projection.Pixel) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Expand grows the rectangle by dx horizontally and dy vertically on each side.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{Left: r.Left - dx, Top: r.Top - dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Host is the viewer hosting a drag. Every callback is invoked synchronously
// from Begin, End, or Abort.
type Host interface {
	ShowGrid()
	HideGrid()
	Drop(pov projection.Pov)
	Cancel()
	InvalidDrop()
	ReservedRegion() Rect
}

// Surface is the panoramic viewport as laid out on screen at the moment of a
// pointer event: its top-left corner in screen coordinates plus the camera.
type Surface struct {
	Origin projection.Pixel
	View   projection.View
}

// Bounds returns the surface rectangle in screen coordinates.
func (s Surface) Bounds() Rect {
	return Rect{
		Left:   s.Origin.X,
		Top:    s.Origin.Y,
		Right:  s.Origin.X + s.View.Viewport.Width,
		Bottom: s.Origin.Y + s.View.Viewport.Height,
	}
}

// Marker is the visual feedback for the dragged pin.
type Marker struct {
	Position projection.Pixel // Screen coordinates
	Scale    float64
	Snapped  bool
}

// Session is one pointer drag, from press to release. Create it with Begin
// and drop it once End or Abort returns.
type Session struct {
	cfg   Config
	host  Host
	state State

	start     projection.Pixel
	marker    Marker
	candidate projection.Pov
	hasCand   bool
}

// Begin starts a drag at the pointer position and shows the ground grid.
func Begin(pointer projection.Pixel, host Host, cfg Config) *Session {
	s := &Session{
		cfg:    cfg,
		host:   host,
		state:  StateDragging,
		start:  pointer,
		marker: Marker{Position: pointer, Scale: 1},
	}
	host.ShowGrid()
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Start returns where the drag began.
func (s *Session) Start() projection.Pixel {
	return s.start
}

// Marker returns the current marker feedback.
func (s *Session) Marker() Marker {
	return s.marker
}

// Candidate returns the snapped drop direction, if any.
func (s *Session) Candidate() (projection.Pov, bool) {
	return s.candidate, s.hasCand
}

// Move recomputes the marker and drop candidate for a pointer position.
// Nothing from the previous frame is reused.
func (s *Session) Move(pointer projection.Pixel, surface Surface) Marker {
	if s.state != StateDragging {
		return s.marker
	}

	reserved := s.host.ReservedRegion().Expand(s.cfg.ReservedMargin, s.cfg.ReservedMargin)
	if reserved.Contains(pointer) {
		s.follow(pointer)
		return s.marker
	}

	if !surface.Bounds().Contains(pointer) {
		s.follow(pointer)
		return s.marker
	}

	pov, screen, ok := s.snap(pointer, surface)
	if !ok {
		s.follow(pointer)
		return s.marker
	}

	s.candidate = pov
	s.hasCand = true
	s.marker = Marker{
		Position: projection.Pixel{X: surface.Origin.X + screen.X, Y: surface.Origin.Y + screen.Y},
		Scale:    MarkerScale(s.cfg, pov.Pitch, surface.View),
		Snapped:  true,
	}
	return s.marker
}

// End releases the pointer, reports the outcome to the host, hides the grid
// and returns the session to idle. The reserved region check uses the exact
// horizontal extent and the margin vertically, so releasing beside the
// toolbar does not count as a cancel.
func (s *Session) End(pointer projection.Pixel) Outcome {
	if s.state != StateDragging {
		return OutcomeNone
	}

	var outcome Outcome
	reserved := s.host.ReservedRegion().Expand(0, s.cfg.ReservedMargin)
	switch {
	case reserved.Contains(pointer):
		outcome = OutcomeCancelled
		s.host.Cancel()
	case s.hasCand:
		outcome = OutcomeCommitted
		s.host.Drop(s.candidate)
	default:
		outcome = OutcomeRejected
		s.host.InvalidDrop()
	}

	s.teardown()
	return outcome
}

// Abort tears the session down without reporting an outcome.
func (s *Session) Abort() {
	if s.state != StateDragging {
		return
	}
	s.teardown()
}

func (s *Session) teardown() {
	s.state = StateIdle
	s.hasCand = false
	s.candidate = projection.Pov{}
	s.host.HideGrid()
}

// follow pins the marker to the raw pointer with no drop candidate.
func (s *Session) follow(pointer projection.Pixel) {
	s.marker = Marker{Position: pointer, Scale: 1}
	s.hasCand = false
	s.candidate = projection.Pov{}
}

// snap finds the ground direction under the pointer, clamped to MinPitch,
// and where that direction lands on the surface.
func (s *Session) snap(pointer projection.Pixel, surface Surface) (projection.Pov, projection.Pixel, bool) {
	local := projection.Pixel{X: pointer.X - surface.Origin.X, Y: pointer.Y - surface.Origin.Y}

	cursor, ok := projection.PixelToPov(local, surface.View)
	if !ok {
		return projection.Pov{}, projection.Pixel{}, false
	}

	snapped := projection.Pov{
		Heading: cursor.Heading,
		Pitch:   math.Min(cursor.Pitch, s.cfg.MinPitch),
	}

	screen, ok := projection.PovToPixel(snapped, surface.View)
	if !ok {
		return projection.Pov{}, projection.Pixel{}, false
	}
	return snapped, screen, true
}

// MarkerScale sizes a pin so its apparent height matches a MarkerHeight
// object standing on the ground in the pitch direction.
func MarkerScale(cfg Config, pitch float64, view projection.View) float64 {
	dist := projection.GroundDistance(pitch, cfg.CameraHeight)
	dV := projection.VerticalFocalLength(view.Viewport, view.Zoom)
	return (cfg.MarkerHeight / math.Max(dist, cfg.MinDistance) * dV) / cfg.PinPixelHeight
}
