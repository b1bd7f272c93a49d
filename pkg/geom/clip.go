package geom

import (
	"fmt"

	"github.com/taigrr/softrender/pkg/math3d"
)

// ClipTriangle clips t against p and appends the surviving pieces to dst:
// nothing when t is fully outside, t itself when fully inside, one triangle
// when a single vertex is inside, two when two are. Winding is preserved and
// vertices that were already inside are copied unchanged.
//
// If an edge that straddles the plane is numerically parallel to it, the
// intersection falls back to the edge's inside vertex and degenerate is set.
// The resulting sliver is valid input for the rasterizer.
func ClipTriangle[S Space](p Plane, t Triangle[S], dst []Triangle[S]) (out []Triangle[S], degenerate bool) {
	v := t.Vertices()
	var in [3]bool
	count := 0
	for i := range v {
		if p.Inside(v[i]) {
			in[i] = true
			count++
		}
	}

	// cut returns the crossing of edge inside→outside.
	cut := func(inside, outside math3d.Vec3) math3d.Vec3 {
		hit, ok := p.Intersect(inside, outside)
		if !ok {
			degenerate = true
			return inside
		}
		return hit
	}

	switch count {
	case 0:
		return dst, false
	case 3:
		return append(dst, t), false
	case 1:
		i := 0
		for !in[i] {
			i++
		}
		a := v[i]
		clipped := Triangle[S]{
			First:  a,
			Second: cut(a, v[(i+1)%3]),
			Third:  cut(a, v[(i+2)%3]),
		}
		return append(dst, clipped), degenerate
	case 2:
		o := 0
		for in[o] {
			o++
		}
		a, b := v[(o+1)%3], v[(o+2)%3]
		ia := cut(a, v[o])
		ib := cut(b, v[o])
		return append(dst,
			Triangle[S]{First: a, Second: b, Third: ia},
			Triangle[S]{First: b, Second: ib, Third: ia},
		), degenerate
	default:
		panic(fmt.Sprintf("geom: impossible clip state: %d vertices inside", count))
	}
}
