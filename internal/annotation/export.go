package annotation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-kml/v2"
	"github.com/wroge/wgs84"
)

// Supported output coordinate reference systems for GeoJSON export.
const (
	CRSWGS84       = 4326 // lon/lat degrees
	CRSWebMercator = 3857 // spherical mercator meters
)

// WriteGeoJSON writes annotations as a GeoJSON FeatureCollection of points.
// crs selects EPSG:4326 or EPSG:3857 coordinates.
func WriteGeoJSON(w io.Writer, list []Annotation, crs int) error {
	var transform func(a, b, c float64) (float64, float64, float64)
	switch crs {
	case CRSWGS84:
	case CRSWebMercator:
		transform = wgs84.EPSG().Transform(CRSWGS84, CRSWebMercator)
	default:
		return fmt.Errorf("unsupported crs EPSG:%d", crs)
	}

	fc := make(geom.GeoJSONFeatureCollection, 0, len(list))
	for _, a := range list {
		x, y := a.Point.Lng, a.Point.Lat
		if transform != nil {
			x, y, _ = transform(x, y, 0)
		}
		pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
		if err != nil {
			return fmt.Errorf("point %s: %w", a.ID, err)
		}

		props := map[string]interface{}{
			"pano_id": a.PanoID,
			"title":   a.Title,
			"color":   string(a.Color),
			"heading": a.Heading,
			"pitch":   a.Pitch,
			"created": a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if a.Desc != "" {
			props["desc"] = a.Desc
		}
		if a.Author != "" {
			props["author"] = a.Author
		}
		if a.ImageDate != "" {
			props["image_date"] = a.ImageDate
		}
		if a.Origin != nil {
			props["origin_lat"] = a.Origin.Lat
			props["origin_lng"] = a.Origin.Lng
		}

		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   pt.AsGeometry(),
			ID:         a.ID,
			Properties: props,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}

// WriteKML writes annotations as KML placemarks inside a single document.
func WriteKML(w io.Writer, list []Annotation) error {
	placemarks := make([]kml.Element, 0, len(list)+1)
	placemarks = append(placemarks, kml.Name("ls-panopin annotations"))
	for _, a := range list {
		desc := a.Desc
		if a.Author != "" {
			desc = fmt.Sprintf("%s (by %s)", desc, a.Author)
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(a.Title),
			kml.Description(desc),
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: a.Point.Lng, Lat: a.Point.Lat}),
			),
		))
	}

	doc := kml.KML(kml.Document(placemarks...))
	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}
