package annotation

import (
	"errors"
	"time"

	"github.com/litescript/ls-panopin/internal/geo"
	"github.com/litescript/ls-panopin/internal/projection"
)

// DemoPanoID is the panorama the demo annotations were authored on.
const DemoPanoID = "Dq7hFTpha83NZqC1d4L1IA"

// DemoLocation is the camera position of DemoPanoID.
var DemoLocation = geo.Point{Lat: 34.16920, Lng: 131.46715}

// DemoPov is the camera DemoPanoID opens with.
var DemoPov = projection.Pov{Heading: 321.56, Pitch: 0.13}

// DemoAnnotations returns a fresh seed set around the demo panorama. None of
// them carry an origin; it is assigned once the viewer location is known.
func DemoAnnotations(now time.Time) []Annotation {
	return []Annotation{
		{
			ID:        "demo1",
			PanoID:    DemoPanoID,
			Point:     geo.Point{Lat: 34.16945, Lng: 131.46710},
			Heading:   321.5,
			Pitch:     2.0,
			Title:     "Main entrance",
			Desc:      "Front entrance with the glass facade.",
			Color:     ColorBlue,
			Author:    "tanaka",
			CreatedAt: now.Add(-15 * time.Minute),
		},
		{
			ID:        "demo2",
			PanoID:    DemoPanoID,
			Point:     geo.Point{Lat: 34.16895, Lng: 131.46680},
			Heading:   280.0,
			Pitch:     5.0,
			Title:     "Parking entrance",
			Desc:      "Visitor parking is this way.",
			Color:     ColorGreen,
			Author:    "tanaka",
			CreatedAt: now.Add(-12 * time.Minute),
		},
		{
			ID:        "demo3",
			PanoID:    DemoPanoID,
			Point:     geo.Point{Lat: 34.16935, Lng: 131.46725},
			Heading:   350.0,
			Pitch:     -3.0,
			Title:     "Bench",
			Desc:      "Rest area on the sidewalk.",
			Color:     ColorYellow,
			Author:    "suzuki",
			CreatedAt: now.Add(-8 * time.Minute),
		},
		{
			ID:        "demo4",
			PanoID:    DemoPanoID,
			Point:     geo.Point{Lat: 34.16955, Lng: 131.46740},
			Heading:   10.0,
			Pitch:     20.0,
			Title:     "Rooftop equipment",
			Desc:      "Air handling units and antennas on the roof.",
			Color:     ColorViolet,
			Author:    "sato",
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			ID:        "demo5",
			PanoID:    DemoPanoID,
			Point:     geo.Point{Lat: 34.16870, Lng: 131.46690},
			Heading:   240.0,
			Pitch:     0.0,
			Title:     "Intersection",
			Desc:      "Road toward the central park.",
			Color:     ColorRed,
			Author:    "tanaka",
			CreatedAt: now.Add(-2 * time.Minute),
		},
	}
}

// Seed adds the demo annotations to a store, skipping any already present.
func Seed(s Store, now time.Time) error {
	for _, a := range DemoAnnotations(now) {
		_, err := s.Get(a.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := s.Add(a); err != nil {
			return err
		}
	}
	return nil
}
