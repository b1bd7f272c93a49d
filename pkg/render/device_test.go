package render

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/scene"
)

func testCamera(pos math3d.Vec3, aspect float64) *scene.Camera {
	cam := scene.NewCamera(scene.Profile{FOV: math.Pi / 2, AspectRatio: aspect, Near: 0.1, Far: 100})
	cam.SetPosition(pos)
	return cam
}

func triangleObject(a, b, c math3d.Vec3) *scene.Object {
	m := models.NewMesh("tri")
	m.AddFace(m.AddVertex(a), m.AddVertex(b), m.AddVertex(c))
	m.CalculateBounds()
	return scene.NewObject("tri", m)
}

func TestBackfaceCulling(t *testing.T) {
	res := Resolution{Width: 100, Height: 100}
	cam := testCamera(math3d.V3(0, 0, -5), 1)
	a, b, c := math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)

	t.Run("front facing", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res))
		dev.RenderObject(triangleObject(a, b, c), cam)
		s := dev.Stats()
		assert.Equal(t, 0, s.Backfaces)
		assert.Equal(t, 1, s.Drawn)
		assert.Positive(t, s.Pixels)
	})

	t.Run("reversed winding", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res))
		dev.RenderObject(triangleObject(a, c, b), cam)
		s := dev.Stats()
		assert.Equal(t, 1, s.Backfaces)
		assert.Zero(t, s.Drawn)
		assert.Zero(t, s.Pixels)
	})

	t.Run("culling disabled", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res), WithBackfaceCulling(false))
		dev.RenderObject(triangleObject(a, c, b), cam)
		assert.Positive(t, dev.Stats().Pixels)
	})
}

func TestTriangleBehindEyeKeepsVisiblePart(t *testing.T) {
	res := Resolution{Width: 64, Height: 64}
	cam := testCamera(math3d.V3(0, 1, 0), 1)
	floor := triangleObject(math3d.V3(-10, 0, -5), math3d.V3(0, 0, 20), math3d.V3(10, 0, -5))

	for _, cull := range []bool{true, false} {
		dev := NewDevice(res, NewFramebuffer(res), WithBackfaceCulling(false), WithFrustumCulling(cull))
		dev.RenderObject(floor, cam)

		s := dev.Stats()
		assert.Zero(t, s.Rejected, "frustum culling %v", cull)
		assert.Positive(t, s.Drawn, "frustum culling %v", cull)
		assert.Positive(t, s.Pixels, "frustum culling %v", cull)
		assert.True(t, math.IsInf(dev.DepthMap().Depth(32, 0), 1), "sky above the horizon stays empty")
	}
}

func TestRenderTwiceMatchesOnce(t *testing.T) {
	res := Resolution{Width: 80, Height: 60}
	cam := testCamera(math3d.V3(0, 1, -4), res.AspectRatio())
	cam.LookAt(math3d.Vec3{})
	cube := scene.NewObject("cube", models.Cube(2))
	cube.Transform.Rotation = math3d.V3(0.3, 0.6, 0)

	fb := NewFramebuffer(res)
	dev := NewDevice(res, fb)

	dev.RenderObject(cube, cam)
	once := append([]color.RGBA(nil), fb.Pixels...)
	pixels := dev.Stats().Pixels
	require.Positive(t, pixels)

	dev.Clear()
	fb.Clear(color.RGBA{})
	dev.RenderObject(cube, cam)
	dev.RenderObject(cube, cam)

	assert.Equal(t, once, fb.Pixels)
	assert.Equal(t, pixels, dev.Stats().Pixels, "second pass must not win any depth test")
}

func parallelScene() *scene.Scene {
	cam := testCamera(math3d.V3(0, 2, -6), 4.0/3.0)
	cam.LookAt(math3d.Vec3{})
	s := scene.New(cam)

	for i, x := range []float64{-3, 0, 3} {
		obj := scene.NewObject("cube", models.Cube(1.5))
		obj.Transform.Position = math3d.V3(x, 0, float64(i))
		obj.Transform.Rotation = math3d.V3(0.2*float64(i), 0.7, 0)
		obj.Color = RGB(uint8(80*i+60), 200, 120)
		s.Add(obj)
	}
	// crosses the left and near planes
	big := scene.NewObject("big", models.Cube(6))
	big.Transform.Position = math3d.V3(-6, 0, -2)
	s.Add(big)
	return s
}

func TestParallelFlushMatchesImmediate(t *testing.T) {
	res := Resolution{Width: 96, Height: 72}
	s := parallelScene()

	fb1 := NewFramebuffer(res)
	immediate := NewDevice(res, fb1)
	immediate.RenderScene(s)
	require.NoError(t, immediate.Flush(context.Background()))

	fb2 := NewFramebuffer(res)
	deferred := NewDevice(res, fb2, WithWorkers(4))
	require.True(t, deferred.Deferred())
	deferred.RenderScene(s)
	assert.Equal(t, make([]color.RGBA, res.Pixels()), fb2.Pixels, "nothing is drawn before Flush")
	require.NoError(t, deferred.Flush(context.Background()))

	assert.Equal(t, fb1.Pixels, fb2.Pixels)
	assert.Equal(t, immediate.Stats(), deferred.Stats())
}

func TestFlushCanceled(t *testing.T) {
	res := Resolution{Width: 32, Height: 32}
	dev := NewDevice(res, NewFramebuffer(res), WithWorkers(2))
	dev.RenderScene(parallelScene())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := dev.Flush(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(t, dev.Flush(context.Background()), "pending commands are dropped")
}

func TestObjectFrustumCulling(t *testing.T) {
	res := Resolution{Width: 40, Height: 40}
	cam := testCamera(math3d.V3(0, 0, -5), 1)
	behind := scene.NewObject("behind", models.Cube(1))
	behind.Transform.Position = math3d.V3(0, 0, -20)

	dev := NewDevice(res, NewFramebuffer(res))
	dev.RenderObject(behind, cam)
	assert.Equal(t, 1, dev.Stats().ObjectsCulled)
	assert.Zero(t, dev.Stats().Triangles)

	dev = NewDevice(res, NewFramebuffer(res), WithFrustumCulling(false))
	dev.RenderObject(behind, cam)
	s := dev.Stats()
	assert.Zero(t, s.ObjectsCulled)
	assert.Equal(t, 12, s.Triangles)
	assert.Zero(t, s.Pixels)
}

func TestHiddenAndNilObjects(t *testing.T) {
	res := Resolution{Width: 10, Height: 10}
	cam := testCamera(math3d.V3(0, 0, -5), 1)
	dev := NewDevice(res, NewFramebuffer(res))

	hidden := scene.NewObject("cube", models.Cube(1))
	hidden.Hidden = true
	dev.RenderObject(hidden, cam)
	dev.RenderObject(nil, cam)
	dev.RenderObject(&scene.Object{}, cam)
	assert.Zero(t, dev.Stats().Objects)
}

func TestWireframeObject(t *testing.T) {
	res := Resolution{Width: 80, Height: 80}
	cam := testCamera(math3d.V3(0, 0, -4), 1)

	solid := scene.NewObject("cube", models.Cube(2))
	dev := NewDevice(res, NewFramebuffer(res))
	dev.RenderObject(solid, cam)
	filled := dev.Stats().Pixels

	wire := scene.NewObject("cube", models.Cube(2))
	wire.Wireframe = true
	dev = NewDevice(res, NewFramebuffer(res))
	dev.RenderObject(wire, cam)
	outlined := dev.Stats().Pixels

	assert.Positive(t, outlined)
	assert.Less(t, outlined, filled)

	dev = NewDevice(res, NewFramebuffer(res))
	dev.RenderObjectWireframe(solid, cam)
	assert.Equal(t, outlined, dev.Stats().Pixels)
	assert.False(t, solid.Wireframe, "flag on the caller's object is untouched")
}

func TestClipPipeline(t *testing.T) {
	var p ClipPipeline

	t.Run("inside", func(t *testing.T) {
		tri := geom.Tri[geom.NDC](math3d.V3(-0.5, -0.5, 0.5), math3d.V3(0.5, -0.5, 0.5), math3d.V3(0, 0.5, 0.25))
		out, degenerate := p.Clip(tri)
		require.Len(t, out, 1)
		assert.Zero(t, degenerate)
		assert.Equal(t, tri, out[0])
	})

	t.Run("behind near plane", func(t *testing.T) {
		tri := geom.Tri[geom.NDC](math3d.V3(0, 0, -0.5), math3d.V3(0.5, 0, -0.2), math3d.V3(0, 0.5, -0.1))
		out, _ := p.Clip(tri)
		assert.Empty(t, out)
	})

	t.Run("across two side planes", func(t *testing.T) {
		tri := geom.Tri[geom.NDC](math3d.V3(-2, 0, 0.5), math3d.V3(2, 0, 0.5), math3d.V3(0, 3, 0.5))
		out, _ := p.Clip(tri)
		require.NotEmpty(t, out)
		area := 0.0
		for _, piece := range out {
			area += piece.Area()
			for _, v := range piece.Vertices() {
				assert.True(t, v.X >= -1-1e-9 && v.X <= 1+1e-9, "x=%v", v.X)
				assert.True(t, v.Y >= -1e-9 && v.Y <= 1+1e-9, "y=%v", v.Y)
			}
		}
		// visible region: x in [-1, 1], 0 <= y <= min(1, 1.5*(2-|x|)) = full unit box
		assert.InDelta(t, 2.0, area, 1e-9)
	})
}

func TestClipSegment(t *testing.T) {
	planes := ndcPlanes[:]

	a, b, ok := ClipSegment(planes, math3d.V3(-2, 0, 0.5), math3d.V3(2, 0, 0.5))
	require.True(t, ok)
	assert.True(t, a.AlmostEqual(math3d.V3(-1, 0, 0.5), 1e-12))
	assert.True(t, b.AlmostEqual(math3d.V3(1, 0, 0.5), 1e-12))

	_, _, ok = ClipSegment(planes, math3d.V3(2, 0, 0.5), math3d.V3(3, 1, 0.5))
	assert.False(t, ok)
}

func TestWorldDebugDrawing(t *testing.T) {
	res := Resolution{Width: 100, Height: 100}
	cam := testCamera(math3d.V3(0, 0, -5), 1)

	t.Run("rect", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res))
		dev.RenderRect(math3d.Vec3{}, math3d.V2(4, 4), ColorWhite, cam)
		assert.Equal(t, 16, dev.Stats().Pixels)
	})

	t.Run("pixel", func(t *testing.T) {
		fb := NewFramebuffer(res)
		dev := NewDevice(res, fb)
		dev.RenderPixel(math3d.Vec3{}, ColorRed, cam)
		assert.Equal(t, ColorRed, fb.GetPixel(50, 50))
		dev.RenderPixel(math3d.V3(0, 0, -10), ColorRed, cam)
		assert.Equal(t, 1, dev.Stats().Pixels, "points behind the camera are skipped")
	})

	t.Run("line through camera plane", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res))
		dev.RenderLine(math3d.V3(-1, -1, -10), math3d.V3(-1, -1, 10), ColorGreen, cam)
		assert.Positive(t, dev.Stats().Pixels)
	})

	t.Run("grid axes and bounds", func(t *testing.T) {
		dev := NewDevice(res, NewFramebuffer(res), WithWorkers(3))
		dev.RenderGrid(-1, 10, 1, ColorGray, cam)
		dev.RenderAxes(math3d.Vec3{}, 1, cam)
		dev.RenderBounds(scene.NewObject("cube", models.Cube(1)), ColorBlue, cam)
		dev.RenderTriangleOutline(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), ColorWhite, cam)
		require.NoError(t, dev.Flush(context.Background()))
		assert.Positive(t, dev.Stats().Pixels)
	})
}

func TestPointLightShade(t *testing.T) {
	light := DefaultLight()
	up := math3d.V3(0, 1, 0)

	t.Run("lit from the center", func(t *testing.T) {
		// The first vertex sits right under the light, the center is far off
		// to the side and almost grazing.
		tri := geom.Tri[geom.World](math3d.V3(4, 9, 2), math3d.V3(-40, 9, 0), math3d.V3(-40, 9, 10))
		assert.Equal(t, color.RGBA{59, 59, 59, 255}, light.Shade(tri, up, ColorWhite))
	})

	t.Run("facing and away", func(t *testing.T) {
		tri := geom.Tri[geom.World](math3d.V3(-1, 0, -1), math3d.V3(9, 0, 2), math3d.V3(-1, 0, 5))
		toLight := light.Position.Sub(tri.Center()).Normalize()
		assert.Equal(t, ColorWhite, light.Shade(tri, toLight, ColorWhite))
		assert.Equal(t, color.RGBA{51, 51, 51, 255}, light.Shade(tri, toLight.Negate(), ColorWhite))
	})

	t.Run("unlit", func(t *testing.T) {
		tri := geom.Tri[geom.World](math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1))
		assert.Equal(t, ColorRed, Unlit.Shade(tri, up, ColorRed))
	})
}
