package render

import "math"

// DepthMap stores the closest depth seen so far for every pixel. It is owned
// by a single Rasterizer and never resized. Concurrent use is only safe when
// writers touch disjoint pixels.
type DepthMap struct {
	width  int
	height int
	depth  []float64
}

// NewDepthMap allocates a cleared depth map.
func NewDepthMap(res Resolution) *DepthMap {
	d := &DepthMap{
		width:  res.Width,
		height: res.Height,
		depth:  make([]float64, res.Pixels()),
	}
	d.Clear()
	return d
}

// Clear resets every pixel to +Inf.
func (d *DepthMap) Clear() {
	// copy-doubling fill
	n := len(d.depth)
	if n == 0 {
		return
	}
	d.depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(d.depth[i:], d.depth[:i])
	}
}

func (d *DepthMap) index(x, y int) (int, bool) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return 0, false
	}
	return y*d.width + x, true
}

// IsCloser reports whether depth is strictly closer than the stored value.
// Out of range pixels are never closer.
func (d *DepthMap) IsCloser(x, y int, depth float64) bool {
	i, ok := d.index(x, y)
	return ok && depth < d.depth[i]
}

// SetDepth stores depth at (x, y). Out of range pixels are ignored.
func (d *DepthMap) SetDepth(x, y int, depth float64) {
	if i, ok := d.index(x, y); ok {
		d.depth[i] = depth
	}
}

// Depth returns the stored depth at (x, y), +Inf when out of range.
func (d *DepthMap) Depth(x, y int) float64 {
	i, ok := d.index(x, y)
	if !ok {
		return math.Inf(1)
	}
	return d.depth[i]
}

// TestAndSet stores depth and returns true if it is strictly closer than
// the current value.
func (d *DepthMap) TestAndSet(x, y int, depth float64) bool {
	i, ok := d.index(x, y)
	if !ok || !(depth < d.depth[i]) {
		return false
	}
	d.depth[i] = depth
	return true
}
