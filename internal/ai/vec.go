package ai

import "math"

// Vec2 is a 2D world-space point or direction in pixels.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the vector magnitude.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between two points.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Norm returns the unit vector in the same direction, or the zero
// vector when v is (near) zero length.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns the left-hand perpendicular of v.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// IsZero reports whether v is (near) the zero vector.
func (v Vec2) IsZero() bool {
	return math.Abs(v.X) < 1e-9 && math.Abs(v.Y) < 1e-9
}

// Heading returns the angle of v in radians, 0 = +X, pi/2 = +Y.
func (v Vec2) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromHeading returns the unit vector pointing along angle a (radians).
func FromHeading(a float64) Vec2 {
	return Vec2{math.Cos(a), math.Sin(a)}
}

// HeadingTo returns the angle in radians from a toward b.
func HeadingTo(a, b Vec2) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
