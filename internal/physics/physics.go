// Package physics provides vector kinematics and collision utilities.
//
// The arena lies on the XZ plane with Y pointing up.
package physics

import "math"

// Vec3 is a 3D vector in world units.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// LenSquared returns the squared magnitude.
func (v Vec3) LenSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the magnitude.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSquared())
}

// Normalized returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	inv := 1.0 / l
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Flat returns v projected onto the XZ plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// OnCircle returns the point at angle (radians) on a circle of the given radius
// around the origin of the XZ plane, lifted to height y.
func OnCircle(angle, radius, y float64) Vec3 {
	return Vec3{
		X: math.Cos(angle) * radius,
		Y: y,
		Z: math.Sin(angle) * radius,
	}
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Len()
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b Vec3) float64 {
	return b.Sub(a).LenSquared()
}

// SpheresOverlap checks if two spheres overlap.
func SpheresOverlap(a Vec3, ra float64, b Vec3, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}
