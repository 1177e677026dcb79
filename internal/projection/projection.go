// Package projection maps between panorama viewing angles and screen pixels
// under a zoom-dependent pinhole camera.
package projection

import (
	"math"
)

const (
	// behindCamera is the minimum camera-space depth (unit ray) for a target
	// to be considered in front of the image plane.
	behindCamera = 0.01

	// clipMargin is how far outside the viewport, in pixels, a projected point
	// may land before it is treated as not visible. Points near the horizon at
	// wide angles distort badly past this band.
	clipMargin = 50.0
)

// Pov is a camera look direction.
type Pov struct {
	Heading float64 `json:"heading"` // Degrees clockwise from north, [0, 360)
	Pitch   float64 `json:"pitch"`   // Degrees, negative looks down, [-90, 90]
}

// Viewport is the pixel size of the rendering surface.
type Viewport struct {
	Width  float64
	Height float64
}

// Valid reports whether the viewport has a positive area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && !math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Pixel is a screen position relative to the viewport's top-left corner.
type Pixel struct {
	X float64
	Y float64
}

// View is the hosting viewer's camera at the moment of projection. It is
// passed by value into every projection call; nothing here reads shared state.
type View struct {
	Pov      Pov
	Zoom     float64
	Viewport Viewport
}

// FieldOfView returns the horizontal field of view in degrees for a zoom
// level. Each zoom step halves the field of view.
func FieldOfView(zoom float64) float64 {
	return 180 / math.Pow(2, zoom)
}

// HorizontalFOV returns the horizontal field of view in radians. A zoom of
// zero or less is read as zoom 1; at zoom 0 the field of view would reach 180
// degrees and collapse the focal lengths.
func (v View) HorizontalFOV() float64 {
	zoom := v.Zoom
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	return degToRad(FieldOfView(zoom))
}

// VerticalFOV returns the vertical field of view in radians, derived from the
// horizontal one so the viewport aspect ratio is preserved.
func (v View) VerticalFOV() float64 {
	hFov := v.HorizontalFOV()
	return 2 * math.Atan(math.Tan(hFov/2)*(v.Viewport.Height/v.Viewport.Width))
}

// FocalLengths returns the horizontal and vertical focal lengths in pixels.
func (v View) FocalLengths() (dH, dV float64) {
	dH = (v.Viewport.Width / 2) / math.Tan(v.HorizontalFOV()/2)
	dV = (v.Viewport.Height / 2) / math.Tan(v.VerticalFOV()/2)
	return dH, dV
}

// VerticalFocalLength returns the vertical focal length in pixels for a
// viewport and zoom. Marker scaling uses it to size objects by distance.
func VerticalFocalLength(vp Viewport, zoom float64) float64 {
	_, dV := View{Zoom: zoom, Viewport: vp}.FocalLengths()
	return dV
}

// PovToPixel projects a target direction onto the screen. It returns false
// when the target is behind the camera, grazes the image plane, or lands
// outside the viewport plus a 50px guard band.
func PovToPixel(target Pov, view View) (Pixel, bool) {
	if !view.Viewport.Valid() {
		return Pixel{}, false
	}
	dH, dV := view.FocalLengths()

	dHeading := degToRad(target.Heading - view.Pov.Heading)
	cam := direction(dHeading, degToRad(target.Pitch)).rotatePitch(degToRad(view.Pov.Pitch))

	if !(cam.Z >= behindCamera) {
		return Pixel{}, false
	}

	w, h := view.Viewport.Width, view.Viewport.Height
	px := cam.X/cam.Z*dH + w/2
	py := cam.Y/cam.Z*dV + h/2

	if !finite(px) || !finite(py) {
		return Pixel{}, false
	}
	if px < -clipMargin || px > w+clipMargin || py < -clipMargin || py > h+clipMargin {
		return Pixel{}, false
	}

	return Pixel{X: px, Y: py}, true
}

// PixelToPov recovers the look direction through a screen point. It returns
// false only for a degenerate viewport or non-finite input.
func PixelToPov(p Pixel, view View) (Pov, bool) {
	if !view.Viewport.Valid() || !finite(p.X) || !finite(p.Y) {
		return Pov{}, false
	}
	dH, _ := view.FocalLengths()

	ray := Vec3{
		X: p.X - view.Viewport.Width/2,
		Y: p.Y - view.Viewport.Height/2,
		Z: dH,
	}.Normalized()
	world := ray.unrotatePitch(degToRad(view.Pov.Pitch))

	heading := NormalizeHeading(radToDeg(math.Atan2(world.X, world.Z)) + view.Pov.Heading)
	pitch := radToDeg(math.Asin(clamp(-world.Y, -1, 1)))

	if !finite(heading) || !finite(pitch) {
		return Pov{}, false
	}
	return Pov{Heading: heading, Pitch: pitch}, true
}

// NormalizeHeading wraps a heading into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
