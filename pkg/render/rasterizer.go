package render

import (
	"image/color"
	"math"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
)

// Rasterizer turns screen-space primitives into depth-tested pixels. Every
// pixel goes through the depth map first and reaches the sink only when it
// is strictly closer than what is already stored.
//
// A Rasterizer may be restricted to a band of rows with Band; bands over
// disjoint rows can run concurrently against the same depth map and sink.
type Rasterizer struct {
	res   Resolution
	depth *DepthMap
	sink  PixelSink

	// rows [y0, y1) this rasterizer may touch
	y0, y1 int

	written int
}

// NewRasterizer creates a rasterizer covering the whole raster.
func NewRasterizer(res Resolution, depth *DepthMap, sink PixelSink) *Rasterizer {
	return &Rasterizer{
		res:   res,
		depth: depth,
		sink:  sink,
		y0:    0,
		y1:    res.Height,
	}
}

// Band returns a rasterizer sharing the depth map and sink but limited to
// rows [y0, y1). Its pixel counter starts at zero.
func (r *Rasterizer) Band(y0, y1 int) *Rasterizer {
	return &Rasterizer{
		res:   r.res,
		depth: r.depth,
		sink:  r.sink,
		y0:    max(y0, 0),
		y1:    min(y1, r.res.Height),
	}
}

// Written returns the number of pixels that passed the depth test.
func (r *Rasterizer) Written() int {
	return r.written
}

// ResetCount zeroes the pixel counter.
func (r *Rasterizer) ResetCount() {
	r.written = 0
}

// DrawPixel plots one depth-tested pixel at the truncated position of p.
func (r *Rasterizer) DrawPixel(p math3d.Vec3, c color.RGBA) {
	r.plot(int(math.Floor(p.X)), int(math.Floor(p.Y)), p.Z, c)
}

// DrawRect fills pixels [x0, x1) × [y0, y1) at a constant depth.
func (r *Rasterizer) DrawRect(x0, y0, x1, y1 int, depth float64, c color.RGBA) {
	y0, y1 = max(y0, r.y0), min(y1, r.y1)
	x0, x1 = max(x0, 0), min(x1, r.res.Width)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.plot(x, y, depth, c)
		}
	}
}

// DrawLine draws a Bresenham line between two screen points. Depth is
// interpolated by progress along the dominant axis, so vertical lines are
// handled like any other.
func (r *Rasterizer) DrawLine(a, b math3d.Vec3, c color.RGBA) {
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	x1, y1 := int(math.Floor(b.X)), int(math.Floor(b.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	steps := max(dx, -dy)
	progress := func(x, y int) float64 {
		switch {
		case steps == 0:
			return 0
		case dx >= -dy:
			return float64(abs(x-x0)) / float64(dx)
		default:
			return float64(abs(y-y0)) / float64(-dy)
		}
	}

	err := dx + dy
	x, y := x0, y0
	for {
		r.plot(x, y, math3d.Lerp(a.Z, b.Z, progress(x, y)), c)
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// DrawTriangleOutline draws the three edges of t.
func (r *Rasterizer) DrawTriangleOutline(t geom.Triangle[geom.Screen], c color.RGBA) {
	r.DrawLine(t.First, t.Second, c)
	r.DrawLine(t.Second, t.Third, c)
	r.DrawLine(t.Third, t.First, c)
}

// FillTriangle fills t with a flat color using scanlines.
//
// Vertices are sorted by Y into top, mid and bottom. The long edge runs top
// to bottom; the short side is top to mid above mid.Y and mid to bottom
// below it. Each row covers columns [int(left), int(right)) with depth
// interpolated across the span.
func (r *Rasterizer) FillTriangle(t geom.Triangle[geom.Screen], c color.RGBA) {
	top, mid, bot := sortByY(t.First, t.Second, t.Third)

	// positive: mid lies right of the long edge
	side := mid.XY().Sub(top.XY()).Cross(bot.XY().Sub(top.XY()))
	midRight := side > 0

	yStart := max(int(math.Floor(top.Y)), r.y0)
	yEnd := min(int(math.Floor(bot.Y)), r.y1-1)

	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)

		longX, longZ := edgeAt(top, bot, fy)
		var shortX, shortZ float64
		if fy < mid.Y {
			shortX, shortZ = edgeAt(top, mid, fy)
		} else {
			shortX, shortZ = edgeAt(mid, bot, fy)
		}

		if midRight {
			r.span(y, longX, longZ, shortX, shortZ, c)
		} else {
			r.span(y, shortX, shortZ, longX, longZ, c)
		}
	}
}

// span fills one row from leftX (inclusive) to rightX (exclusive).
func (r *Rasterizer) span(y int, leftX, leftZ, rightX, rightZ float64, c color.RGBA) {
	xStart, xEnd := int(math.Floor(leftX)), int(math.Floor(rightX))
	if xEnd <= xStart {
		return
	}
	width := float64(xEnd - xStart)
	for x := max(xStart, 0); x < min(xEnd, r.res.Width); x++ {
		z := math3d.Lerp(leftZ, rightZ, float64(x-xStart)/width)
		r.plot(x, y, z, c)
	}
}

func (r *Rasterizer) plot(x, y int, z float64, c color.RGBA) {
	if y < r.y0 || y >= r.y1 || !r.res.Contains(x, y) {
		return
	}
	assertDepth(z)
	if r.depth.TestAndSet(x, y, z) {
		r.sink.SetPixel(x, y, c)
		r.written++
	}
}

// edgeAt returns X and depth of edge a→b at row y. A horizontal edge yields
// its end point.
func edgeAt(a, b math3d.Vec3, y float64) (x, z float64) {
	t := 1.0
	if !math3d.AlmostEqual(a.Y, b.Y, math3d.Epsilon) {
		t = math3d.Clamp((y-a.Y)/(b.Y-a.Y), 0, 1)
	}
	return math3d.Lerp(a.X, b.X, t), math3d.Lerp(a.Z, b.Z, t)
}

// sortByY is a stable three-element sort on Y.
func sortByY(a, b, c math3d.Vec3) (top, mid, bot math3d.Vec3) {
	if a.Y > b.Y {
		a, b = b, a
	}
	if b.Y > c.Y {
		b, c = c, b
	}
	if a.Y > b.Y {
		a, b = b, a
	}
	return a, b, c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
