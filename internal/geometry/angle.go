package geometry

import "math"

// Point is a position in image pixel space.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// JointAngle returns the angle in degrees at vertex formed by the legs
// vertex->a and vertex->c. The result is in [0, 180].
//
// ok is false when either leg has zero length or any coordinate is not
// finite; no angle exists in those cases.
func JointAngle(a, vertex, c Point) (deg float64, ok bool) {
	v1 := a.Sub(vertex)
	v2 := c.Sub(vertex)

	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 == 0 || n2 == 0 || !finite(n1) || !finite(n2) {
		return 0, false
	}

	cos := v1.Dot(v2) / (n1 * n2)
	if math.IsNaN(cos) {
		return 0, false
	}
	// Rounding can push collinear legs just past ±1.
	cos = math.Max(-1, math.Min(1, cos))

	deg = math.Acos(cos) * 180 / math.Pi
	if !finite(deg) {
		return 0, false
	}
	return deg, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
