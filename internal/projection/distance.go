package projection

import "math"

const (
	// CameraHeight is the assumed panorama camera height above ground, meters.
	CameraHeight = 2.5

	// aboveHorizonHeight is the reference height used for points looked at
	// above the horizon (building fronts, signs).
	aboveHorizonHeight = 5.0

	minEstimate = 5.0
	maxEstimate = 100.0
)

// EstimateDistance guesses the ground distance in meters to whatever sits in
// the given pitch direction. Looking down, it intersects the ground plane
// CameraHeight below the lens; looking up, it assumes a surface at a fixed
// reference height. Results are clamped to [5, 100] m and anything within a
// degree of the horizon is treated as far away.
func EstimateDistance(pitch float64) float64 {
	absPitch := math.Abs(pitch)

	switch {
	case absPitch < 1:
		return maxEstimate
	case pitch < 0:
		return clamp(CameraHeight/math.Tan(degToRad(absPitch)), minEstimate, maxEstimate)
	default:
		return clamp(aboveHorizonHeight/math.Tan(degToRad(absPitch)), minEstimate, maxEstimate)
	}
}

// GroundDistance is the unclamped distance to a ground plane height meters
// below the lens, seen at the given pitch. Zero pitch yields +Inf.
func GroundDistance(pitch, height float64) float64 {
	return height / math.Tan(degToRad(math.Abs(pitch)))
}
