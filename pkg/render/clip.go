package render

import (
	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
)

// ndcPlanes bound the visible NDC volume, normals pointing inward, in the
// order they are applied.
var ndcPlanes = [6]geom.Plane{
	geom.NewPlane(math3d.V3(0, 0, 0), math3d.V3(0, 0, 1)),  // near
	geom.NewPlane(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1)), // far
	geom.NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, -1, 0)), // top
	geom.NewPlane(math3d.V3(0, -1, 0), math3d.V3(0, 1, 0)), // bottom
	geom.NewPlane(math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0)), // left
	geom.NewPlane(math3d.V3(1, 0, 0), math3d.V3(-1, 0, 0)), // right
}

// ClipPipeline clips NDC triangles against the six view-volume planes. Two
// buffers alternate between planes so each plane consumes exactly the output
// of the previous one. Not safe for concurrent use.
type ClipPipeline struct {
	front []geom.Triangle[geom.NDC]
	back  []geom.Triangle[geom.NDC]
}

// Clip returns the pieces of t inside the view volume and how many
// intersections fell back to a vertex because an edge was parallel to a
// plane. The returned slice is reused by the next call.
func (p *ClipPipeline) Clip(t geom.Triangle[geom.NDC]) (out []geom.Triangle[geom.NDC], degenerate int) {
	p.front = append(p.front[:0], t)
	for _, plane := range ndcPlanes {
		p.back = p.back[:0]
		for _, tri := range p.front {
			var deg bool
			p.back, deg = geom.ClipTriangle(plane, tri, p.back)
			if deg {
				degenerate++
			}
		}
		p.front, p.back = p.back, p.front
		if len(p.front) == 0 {
			break
		}
	}
	return p.front, degenerate
}

// ClipSegment clips the segment a-b against planes and reports whether any
// part of it survives.
func ClipSegment(planes []geom.Plane, a, b math3d.Vec3) (math3d.Vec3, math3d.Vec3, bool) {
	for _, plane := range planes {
		inA, inB := plane.Inside(a), plane.Inside(b)
		switch {
		case inA && inB:
			continue
		case !inA && !inB:
			return a, b, false
		}
		hit, ok := plane.Intersect(a, b)
		if !ok {
			// grazing the plane; keep the inside end only
			hit = a
			if inB {
				hit = b
			}
		}
		if inA {
			b = hit
		} else {
			a = hit
		}
	}
	return a, b, true
}
