package geom

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Plane is an infinite plane through Position with unit Normal. Points on
// the normal side are inside.
type Plane struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// NewPlane builds a plane, normalizing the given normal.
func NewPlane(position, normal math3d.Vec3) Plane {
	return Plane{Position: position, Normal: normal.Normalize()}
}

// SignedDistance returns the distance from p to the plane. Non-negative
// means inside.
func (p Plane) SignedDistance(point math3d.Vec3) float64 {
	return point.Dot(p.Normal) - p.Normal.Dot(p.Position)
}

// Inside reports whether point lies on or in front of the plane.
func (p Plane) Inside(point math3d.Vec3) bool {
	return p.SignedDistance(point) >= 0
}

// Intersect returns the point where the line through start and end crosses
// the plane. It reports false when the line is parallel to the plane within
// a tolerance relative to the segment length, which includes a zero-length
// segment.
func (p Plane) Intersect(start, end math3d.Vec3) (math3d.Vec3, bool) {
	d := end.Sub(start)
	denom := p.Normal.Dot(d)
	if math.Abs(denom) <= math3d.RelEpsilon*d.Len() || denom == 0 {
		return math3d.Vec3{}, false
	}
	t := (p.Normal.Dot(p.Position) - p.Normal.Dot(start)) / denom
	return start.Add(d.Scale(t)), true
}
