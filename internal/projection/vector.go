package projection

import "math"

// Vec3 is a direction or position in camera or world space.
// Camera space: X right, Y down, Z forward along the view axis.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// rotatePitch tilts v about the X axis by the camera pitch (radians).
// Positive pitch looks up, which moves world points down the screen.
func (v Vec3) rotatePitch(pitch float64) Vec3 {
	s, c := math.Sincos(pitch)
	return Vec3{
		X: v.X,
		Y: v.Z*s + v.Y*c,
		Z: v.Z*c - v.Y*s,
	}
}

// unrotatePitch is the inverse of rotatePitch.
func (v Vec3) unrotatePitch(pitch float64) Vec3 {
	s, c := math.Sincos(pitch)
	return Vec3{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// direction returns the unit vector for a heading offset and pitch (radians)
// in the yawed camera frame (Y down).
func direction(dHeading, pitch float64) Vec3 {
	sp, cp := math.Sincos(pitch)
	sh, ch := math.Sincos(dHeading)
	return Vec3{
		X: cp * sh,
		Y: -sp,
		Z: cp * ch,
	}
}
