// Package geo provides great-circle geometry on a spherical Earth.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the mean Earth radius in meters. No ellipsoid correction is
// applied; the error is acceptable at city scale.
const EarthRadius = 6371000.0

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed
// or lies outside the valid latitude/longitude range.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Point is a geographic position in degrees.
type Point struct {
	Lat float64 `json:"lat" mapstructure:"lat"` // Latitude (north positive)
	Lng float64 `json:"lng" mapstructure:"lng"` // Longitude (east positive)
}

// Valid reports whether the point lies within [-90, 90] x [-180, 180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// String formats the point as "lat,lng".
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// ParsePoint parses a "lat,lng" string.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Point{}, ErrInvalidCoordinates
	}
	return p, nil
}

// Bearing returns the initial great-circle bearing from one point to another,
// in degrees within [0, 360). The result is meaningless when from == to;
// callers must special-case zero distance.
func Bearing(from, to Point) float64 {
	lat1 := degToRad(from.Lat)
	lat2 := degToRad(to.Lat)
	dLng := degToRad(to.Lng - from.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	bearing := radToDeg(math.Atan2(y, x))

	return math.Mod(bearing+360, 360)
}

// Distance returns the haversine great-circle distance in meters.
func Distance(a, b Point) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Destination solves the direct problem: the point reached by travelling
// distanceM meters from origin along the given initial bearing.
func Destination(origin Point, bearingDeg, distanceM float64) Point {
	brng := degToRad(bearingDeg)
	lat1 := degToRad(origin.Lat)
	lng1 := degToRad(origin.Lng)
	delta := distanceM / EarthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) +
		math.Cos(lat1)*math.Sin(delta)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{Lat: radToDeg(lat2), Lng: radToDeg(lng2)}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
