package scene

import (
	"image/color"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
)

// Mesh is the triangle source consumed by the renderer. Faces index into
// the vertex list and are wound counter-clockwise when seen from outside.
type Mesh interface {
	VertexCount() int
	TriangleCount() int
	Vertex(i int) math3d.Vec3
	Face(i int) [3]int
}

// BoundedMesh is a Mesh that knows its local-space bounding box, which
// enables whole-object frustum culling.
type BoundedMesh interface {
	Mesh
	Bounds() (lo, hi math3d.Vec3)
}

// ColoredMesh is a Mesh with per-face base colors. ok is false when face i
// has no color of its own.
type ColoredMesh interface {
	Mesh
	FaceColor(i int) (c color.RGBA, ok bool)
}

// Transform places an object in the world. Scale applies first, then
// rotation (pitch, yaw, roll in radians), then translation.
type Transform struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
	Scale    math3d.Vec3
}

// IdentityTransform has unit scale and no rotation or translation.
func IdentityTransform() Transform {
	return Transform{Scale: math3d.V3(1, 1, 1)}
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() math3d.Mat4 {
	return math3d.TRS(t.Position, t.Rotation, t.Scale)
}

// Object is a mesh instance in the world.
type Object struct {
	Name      string
	Mesh      Mesh
	Transform Transform
	// Color is the base color for faces without a material color. The zero
	// value means white.
	Color color.RGBA
	// Wireframe draws edges instead of filled faces.
	Wireframe bool
	Hidden    bool
}

// NewObject wraps mesh with an identity transform.
func NewObject(name string, mesh Mesh) *Object {
	return &Object{Name: name, Mesh: mesh, Transform: IdentityTransform()}
}

// Triangle returns face i in local space.
func (o *Object) Triangle(i int) geom.Triangle[geom.Local] {
	f := o.Mesh.Face(i)
	return geom.Tri[geom.Local](o.Mesh.Vertex(f[0]), o.Mesh.Vertex(f[1]), o.Mesh.Vertex(f[2]))
}

// BaseColor returns the color of face i before lighting.
func (o *Object) BaseColor(i int) color.RGBA {
	if cm, ok := o.Mesh.(ColoredMesh); ok {
		if c, ok := cm.FaceColor(i); ok {
			return c
		}
	}
	if o.Color == (color.RGBA{}) {
		return color.RGBA{255, 255, 255, 255}
	}
	return o.Color
}

// Scene groups a camera with the objects it sees. Objects render in slice
// order.
type Scene struct {
	Camera  *Camera
	Objects []*Object
}

// New creates an empty scene viewed through cam.
func New(cam *Camera) *Scene {
	return &Scene{Camera: cam}
}

// Add appends objects to the scene.
func (s *Scene) Add(objs ...*Object) {
	s.Objects = append(s.Objects, objs...)
}

// Find returns the first object with the given name.
func (s *Scene) Find(name string) (*Object, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}
