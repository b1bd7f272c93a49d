package scene

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softrender/pkg/math3d"
)

type triMesh struct {
	verts []math3d.Vec3
	color *color.RGBA
}

func (m triMesh) VertexCount() int         { return len(m.verts) }
func (m triMesh) TriangleCount() int       { return len(m.verts) / 3 }
func (m triMesh) Vertex(i int) math3d.Vec3 { return m.verts[i] }
func (m triMesh) Face(i int) [3]int        { return [3]int{3 * i, 3*i + 1, 3*i + 2} }

func (m triMesh) FaceColor(int) (color.RGBA, bool) {
	if m.color == nil {
		return color.RGBA{}, false
	}
	return *m.color, true
}

func TestCameraMatricesAreCached(t *testing.T) {
	cam := NewCamera(DefaultProfile())
	cam.SetPosition(math3d.V3(0, 0, -5))

	vp := cam.ViewProjectionMatrix()
	assert.Equal(t, vp, cam.ViewProjectionMatrix())

	cam.SetPosition(math3d.V3(0, 0, -10))
	assert.NotEqual(t, vp, cam.ViewProjectionMatrix(), "moving must invalidate the cache")

	vp = cam.ViewProjectionMatrix()
	cam.SetAspectRatio(1)
	assert.NotEqual(t, vp, cam.ViewProjectionMatrix(), "lens change must invalidate the cache")
}

func TestCameraViewProjectsForward(t *testing.T) {
	cam := NewCamera(Profile{FOV: math.Pi / 2, AspectRatio: 1, Near: 1, Far: 11})
	cam.SetPosition(math3d.V3(0, 0, -5))

	clip := cam.ViewProjectionMatrix().MulVec4(math3d.Point(math3d.V3(0, 0, 0)))
	ndc := clip.PerspectiveDivide()
	assert.InDelta(t, 5.0, clip.W, 1e-12)
	assert.InDelta(t, 0.0, ndc.X, 1e-12)
	assert.InDelta(t, 0.0, ndc.Y, 1e-12)
	assert.Greater(t, ndc.Z, 0.0)
	assert.Less(t, ndc.Z, 1.0)
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera(DefaultProfile())
	cam.SetPosition(math3d.V3(3, 4, -2))
	target := math3d.V3(-1, 0, 5)
	cam.LookAt(target)

	want := target.Sub(cam.Position()).Normalize()
	assert.True(t, cam.Forward().AlmostEqual(want, 1e-9), "forward %v want %v", cam.Forward(), want)

	view := cam.ViewMatrix().MulPoint(target)
	assert.InDelta(t, 0.0, view.X, 1e-9)
	assert.InDelta(t, 0.0, view.Y, 1e-9)
	assert.Greater(t, view.Z, 0.0)
}

func TestCameraOrbit(t *testing.T) {
	cam := NewCamera(DefaultProfile())
	cam.Orbit(math3d.V3(0, 0, 0), 10, 0, 0)
	assert.True(t, cam.Position().AlmostEqual(math3d.V3(0, 0, -10), 1e-9))
	assert.True(t, cam.Forward().AlmostEqual(math3d.Forward(), 1e-9))
}

func TestCameraRotateClampsPitch(t *testing.T) {
	cam := NewCamera(DefaultProfile())
	cam.Rotate(10, 0, 0)
	assert.Less(t, cam.Rotation().X, math.Pi/2)
}

func TestObjectBaseColor(t *testing.T) {
	verts := []math3d.Vec3{{}, {X: 1}, {Y: 1}}
	obj := NewObject("tri", triMesh{verts: verts})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, obj.BaseColor(0))

	obj.Color = color.RGBA{10, 20, 30, 255}
	assert.Equal(t, obj.Color, obj.BaseColor(0))

	red := color.RGBA{255, 0, 0, 255}
	obj.Mesh = triMesh{verts: verts, color: &red}
	assert.Equal(t, red, obj.BaseColor(0), "material color wins")
}

func TestObjectTriangle(t *testing.T) {
	verts := []math3d.Vec3{{X: 1}, {Y: 2}, {Z: 3}}
	obj := NewObject("tri", triMesh{verts: verts})
	tri := obj.Triangle(0)
	assert.Equal(t, verts[0], tri.First)
	assert.Equal(t, verts[1], tri.Second)
	assert.Equal(t, verts[2], tri.Third)
}

func TestSceneFind(t *testing.T) {
	s := New(NewCamera(DefaultProfile()))
	a := NewObject("a", triMesh{})
	b := NewObject("b", triMesh{})
	s.Add(a, b)

	got, ok := s.Find("b")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = s.Find("missing")
	assert.False(t, ok)
}
