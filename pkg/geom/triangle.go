package geom

import "github.com/taigrr/softrender/pkg/math3d"

// Triangle is three points in coordinate space S. Vertex order is the
// winding and every pipeline stage preserves it.
type Triangle[S Space] struct {
	First, Second, Third math3d.Vec3
}

// Tri builds a Triangle in space S.
func Tri[S Space](a, b, c math3d.Vec3) Triangle[S] {
	return Triangle[S]{First: a, Second: b, Third: c}
}

// Vertices returns the points in winding order.
func (t Triangle[S]) Vertices() [3]math3d.Vec3 {
	return [3]math3d.Vec3{t.First, t.Second, t.Third}
}

// Normal returns the unit face normal for the left-handed winding rule,
// (Third - First) × (Second - First). A degenerate triangle yields the zero
// vector.
func (t Triangle[S]) Normal() math3d.Vec3 {
	return t.Third.Sub(t.First).Cross(t.Second.Sub(t.First)).Normalize()
}

// Center returns the centroid.
func (t Triangle[S]) Center() math3d.Vec3 {
	return t.First.Add(t.Second).Add(t.Third).Scale(1.0 / 3.0)
}

// Area returns the surface area.
func (t Triangle[S]) Area() float64 {
	return t.Second.Sub(t.First).Cross(t.Third.Sub(t.First)).Len() / 2
}

// Map applies f to each vertex and retags the result. It is the only way to
// move a triangle between spaces.
func Map[From, To Space](t Triangle[From], f func(math3d.Vec3) math3d.Vec3) Triangle[To] {
	return Triangle[To]{First: f(t.First), Second: f(t.Second), Third: f(t.Third)}
}

// Reversed returns the triangle with the opposite winding.
func (t Triangle[S]) Reversed() Triangle[S] {
	return Triangle[S]{First: t.First, Second: t.Third, Third: t.Second}
}
