package render

import (
	"image/color"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// toScreen projects a world point that is already known to be inside the
// view volume.
func (d *Device) toScreen(p math3d.Vec3, viewProj math3d.Mat4) (math3d.Vec3, bool) {
	clip := viewProj.MulVec4(math3d.Point(p))
	if clip.W <= math3d.Epsilon {
		return math3d.Vec3{}, false
	}
	return d.res.MapNDC(clip.PerspectiveDivide()), true
}

// RenderLine draws a depth-tested world-space segment. The segment is
// clipped to the view volume first, so endpoints may lie behind the camera.
func (d *Device) RenderLine(from, to math3d.Vec3, c color.RGBA, cam *scene.Camera) {
	viewProj := cam.ViewProjectionMatrix()
	f := NewFrustum(viewProj)
	a, b, ok := ClipSegment(f.Planes[:], from, to)
	if !ok {
		return
	}
	sa, okA := d.toScreen(a, viewProj)
	sb, okB := d.toScreen(b, viewProj)
	if !okA || !okB {
		return
	}
	d.emit(command{kind: cmdLine, tri: geom.Tri[geom.Screen](sa, sb, sb), color: c})
}

// RenderPixel draws a single depth-tested pixel at a world position.
func (d *Device) RenderPixel(p math3d.Vec3, c color.RGBA, cam *scene.Camera) {
	viewProj := cam.ViewProjectionMatrix()
	if !NewFrustum(viewProj).ContainsPoint(p) {
		return
	}
	s, ok := d.toScreen(p, viewProj)
	if !ok {
		return
	}
	d.emit(command{kind: cmdPixel, tri: geom.Tri[geom.Screen](s, s, s), color: c})
}

// RenderRect draws a screen-aligned rectangle of the given pixel size,
// centered on a world position and tested at that position's depth.
func (d *Device) RenderRect(center math3d.Vec3, size math3d.Vec2, c color.RGBA, cam *scene.Camera) {
	viewProj := cam.ViewProjectionMatrix()
	if !NewFrustum(viewProj).ContainsPoint(center) {
		return
	}
	s, ok := d.toScreen(center, viewProj)
	if !ok {
		return
	}
	half := size.Scale(0.5)
	topLeft := math3d.V3(s.X-half.X, s.Y-half.Y, s.Z)
	bottomRight := math3d.V3(s.X+half.X, s.Y+half.Y, s.Z)
	d.emit(command{kind: cmdRect, tri: geom.Tri[geom.Screen](topLeft, bottomRight, bottomRight), color: c})
}

// RenderTriangleOutline draws the edges of a world-space triangle.
func (d *Device) RenderTriangleOutline(p0, p1, p2 math3d.Vec3, c color.RGBA, cam *scene.Camera) {
	d.RenderLine(p0, p1, c, cam)
	d.RenderLine(p1, p2, c, cam)
	d.RenderLine(p2, p0, c, cam)
}

// RenderAxes draws the X, Y and Z axes from origin in red, green and blue.
func (d *Device) RenderAxes(origin math3d.Vec3, length float64, cam *scene.Camera) {
	d.RenderLine(origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed, cam)
	d.RenderLine(origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen, cam)
	d.RenderLine(origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue, cam)
}

// RenderGrid draws a square grid on the XZ plane at height y.
func (d *Device) RenderGrid(y, size, step float64, c color.RGBA, cam *scene.Camera) {
	if step <= 0 {
		return
	}
	half := size / 2
	for x := -half; x <= half+step/2; x += step {
		d.RenderLine(math3d.V3(x, y, -half), math3d.V3(x, y, half), c, cam)
	}
	for z := -half; z <= half+step/2; z += step {
		d.RenderLine(math3d.V3(-half, y, z), math3d.V3(half, y, z), c, cam)
	}
}

// RenderObjectWireframe renders obj as triangle outlines whatever its
// Wireframe flag says. Culling and clipping are the same as RenderObject.
func (d *Device) RenderObjectWireframe(obj *scene.Object, cam *scene.Camera) {
	if obj == nil {
		return
	}
	wire := *obj
	wire.Wireframe = true
	d.RenderObject(&wire, cam)
}

// RenderBounds draws the world-space bounding box of obj, if its mesh
// reports one.
func (d *Device) RenderBounds(obj *scene.Object, c color.RGBA, cam *scene.Camera) {
	bm, ok := obj.Mesh.(scene.BoundedMesh)
	if !ok {
		return
	}
	box := NewAABB(bm.Bounds())
	world := obj.Transform.Matrix()

	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = world.MulPoint(math3d.V3(
			pick(i&1 != 0, box.Max.X, box.Min.X),
			pick(i&2 != 0, box.Max.Y, box.Min.Y),
			pick(i&4 != 0, box.Max.Z, box.Min.Z),
		))
	}
	// corners differing in exactly one bit share an edge
	for i := range corners {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				d.RenderLine(corners[i], corners[j], c, cam)
			}
		}
	}
}
