// Package annotation holds geographic pins placed on panoramas and the
// parallax math that keeps them anchored as the viewpoint moves.
package annotation

import (
	"math"
	"time"

	"github.com/litescript/ls-panopin/internal/geo"
	"github.com/litescript/ls-panopin/internal/projection"
)

// minOriginDistance is the smallest authoring distance, in meters, from which
// a pin's height can be inferred. Closer than this the height estimate blows up.
const minOriginDistance = 0.1

// Annotation is a pin anchored to a real-world point.
type Annotation struct {
	ID     string    `json:"id"`
	PanoID string    `json:"pano_id"`
	Point  geo.Point `json:"point"`

	// Origin is the viewer location when the pin was authored. It is nil until
	// a location is first known and is never reassigned afterwards.
	Origin *geo.Point `json:"origin,omitempty"`

	Heading float64 `json:"heading"` // Authoring heading, degrees
	Pitch   float64 `json:"pitch"`   // Authoring pitch, degrees

	Title     string    `json:"title"`
	Desc      string    `json:"desc,omitempty"`
	Color     PinColor  `json:"color"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// ImageDate is the capture date ("YYYY-MM") of the imagery the pin was
	// placed on. Empty means the pin applies to every capture.
	ImageDate string `json:"image_date,omitempty"`
}

// HasOrigin reports whether the authoring viewpoint has been recorded.
func (a Annotation) HasOrigin() bool {
	return a.Origin != nil
}

// CorrectedPitch returns the pitch at which the pin appears from viewpoint.
//
// The pin is modelled as a point at a fixed height above the ground. That
// height is inferred from the authoring pitch and the origin distance, then
// reused: pitch = atan(h / d). Without an origin, or with an origin closer
// than 10cm, the stored pitch is returned unchanged.
func (a Annotation) CorrectedPitch(viewpoint geo.Point) float64 {
	if a.Origin == nil {
		return a.Pitch
	}

	d0 := geo.Distance(*a.Origin, a.Point)
	if d0 < minOriginDistance {
		return a.Pitch
	}

	h := d0 * math.Tan(a.Pitch*math.Pi/180)
	d1 := geo.Distance(viewpoint, a.Point)
	return math.Atan2(h, d1) * 180 / math.Pi
}

// PovFrom returns the direction to the pin as seen from viewpoint. When the
// viewpoint sits exactly on the pin the bearing is undefined and the stored
// heading is used instead.
func (a Annotation) PovFrom(viewpoint geo.Point) projection.Pov {
	heading := a.Heading
	if geo.Distance(viewpoint, a.Point) > 0 {
		heading = geo.Bearing(viewpoint, a.Point)
	}
	return projection.Pov{
		Heading: heading,
		Pitch:   a.CorrectedPitch(viewpoint),
	}
}

// Place converts a committed drop direction into a geographic point by
// walking the estimated ground distance along its heading from viewpoint.
func Place(pov projection.Pov, viewpoint geo.Point) geo.Point {
	return geo.Destination(viewpoint, pov.Heading, projection.EstimateDistance(pov.Pitch))
}

// Draft builds an unsaved pin from a committed drop. The store assigns the id
// and creation time.
func Draft(pov projection.Pov, viewpoint geo.Point, panoID string) Annotation {
	origin := viewpoint
	return Annotation{
		PanoID:  panoID,
		Point:   Place(pov, viewpoint),
		Origin:  &origin,
		Heading: pov.Heading,
		Pitch:   pov.Pitch,
		Color:   ColorRed,
	}
}
