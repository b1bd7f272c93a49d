// Package render is a CPU rasterization pipeline. A Device takes scene
// objects through world transform, backface culling, projection, clipping
// against the view volume and scanline rasterization into a PixelSink,
// using a depth buffer for visibility.
package render

import (
	"context"
	"fmt"
	"image/color"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

type commandKind uint8

const (
	cmdTriangle commandKind = iota
	cmdOutline
	cmdLine
	cmdPixel
	cmdRect
)

// command is a screen-space draw call. Lines use First and Second; rects
// store their corners in First and Second with the depth in First.Z.
type command struct {
	kind  commandKind
	tri   geom.Triangle[geom.Screen]
	color color.RGBA
}

// Device renders objects into a pixel sink. It is not safe for concurrent
// use; parallelism happens inside Flush.
type Device struct {
	res    Resolution
	sink   PixelSink
	depth  *DepthMap
	raster *Rasterizer
	clip   ClipPipeline
	opts   deviceOptions

	// scratch for near-plane clipping in world space
	nearBuf []geom.Triangle[geom.World]

	// deferred commands, only used with more than one worker
	commands []command
	stats    Stats
}

// NewDevice creates a device drawing into sink at the given resolution.
func NewDevice(res Resolution, sink PixelSink, opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	depth := NewDepthMap(res)
	return &Device{
		res:    res,
		sink:   sink,
		depth:  depth,
		raster: NewRasterizer(res, depth, sink),
		opts:   o,
	}
}

// Resolution returns the raster size.
func (d *Device) Resolution() Resolution {
	return d.res
}

// DepthMap exposes the depth buffer for inspection.
func (d *Device) DepthMap() *DepthMap {
	return d.depth
}

// Stats returns the counters accumulated since the last Clear.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Pixels += d.raster.Written()
	return s
}

// Clear resets the depth buffer and statistics and drops pending commands.
// The sink is left alone; clear it separately.
func (d *Device) Clear() {
	d.depth.Clear()
	d.raster.ResetCount()
	d.commands = d.commands[:0]
	d.stats = Stats{}
}

// Deferred reports whether draw calls are recorded for Flush instead of
// rasterized immediately.
func (d *Device) Deferred() bool {
	return d.opts.workers > 1
}

// RenderScene renders every object of s through its camera, in order.
func (d *Device) RenderScene(s *scene.Scene) {
	for _, obj := range s.Objects {
		d.RenderObject(obj, s.Camera)
	}
}

// RenderObject pushes every triangle of obj through the pipeline.
func (d *Device) RenderObject(obj *scene.Object, cam *scene.Camera) {
	if obj == nil || obj.Mesh == nil || obj.Hidden {
		return
	}
	d.stats.Objects++

	world := obj.Transform.Matrix()
	viewProj := cam.ViewProjectionMatrix()
	camPos := cam.Position()

	frustum := NewFrustum(viewProj)
	inside := false
	if d.opts.frustumCull {
		if bm, ok := obj.Mesh.(scene.BoundedMesh); ok {
			box := NewAABB(bm.Bounds()).Transform(world)
			if !frustum.IntersectAABB(box) {
				d.stats.ObjectsCulled++
				Logger().Debug("object culled", "name", obj.Name)
				return
			}
			inside = frustum.ContainsAABB(box)
		}
	}

	kind := cmdTriangle
	if obj.Wireframe {
		kind = cmdOutline
	}

	for i := range obj.Mesh.TriangleCount() {
		d.stats.Triangles++

		tri := geom.Map[geom.Local, geom.World](obj.Triangle(i), world.MulPoint)
		normal := tri.Normal()
		if d.opts.backfaces && normal.Dot(tri.First.Sub(camPos)) > 0 {
			d.stats.Backfaces++
			continue
		}

		if inside {
			ndc, ok := project(tri, viewProj)
			if !ok {
				d.stats.Rejected++
				continue
			}
			d.emitNDC(kind, ndc, d.opts.shader.Shade(tri, normal, obj.BaseColor(i)))
			continue
		}

		// Cut at the near plane before the divide so that triangles
		// reaching behind the eye keep their visible part.
		var degenerate bool
		d.nearBuf, degenerate = geom.ClipTriangle(frustum.Planes[FrustumNear], tri, d.nearBuf[:0])
		if degenerate {
			d.stats.Degenerate++
		}
		if len(d.nearBuf) == 0 {
			d.stats.Rejected++
			continue
		}

		c := d.opts.shader.Shade(tri, normal, obj.BaseColor(i))
		for _, piece := range d.nearBuf {
			ndc, ok := project(piece, viewProj)
			if !ok {
				d.stats.Rejected++
				continue
			}
			d.clipAndEmit(kind, ndc, c)
		}
	}
}

func (d *Device) clipAndEmit(kind commandKind, ndc geom.Triangle[geom.NDC], c color.RGBA) {
	pieces, degenerate := d.clip.Clip(ndc)
	d.stats.Degenerate += degenerate
	if len(pieces) == 0 {
		d.stats.Clipped++
	}
	for _, p := range pieces {
		d.emitNDC(kind, p, c)
	}
}

func (d *Device) emitNDC(kind commandKind, t geom.Triangle[geom.NDC], c color.RGBA) {
	d.stats.Drawn++
	d.emit(command{
		kind:  kind,
		tri:   geom.Map[geom.NDC, geom.Screen](t, d.res.MapNDC),
		color: c,
	})
}

func (d *Device) emit(cmd command) {
	if d.Deferred() {
		d.commands = append(d.commands, cmd)
		return
	}
	d.raster.execute(cmd)
}

// Flush rasterizes recorded commands. The raster is split into row bands
// that run concurrently; each band replays every command in submission
// order, clipped to its rows, so the image matches immediate mode. Without
// workers Flush does nothing.
func (d *Device) Flush(ctx context.Context) error {
	if len(d.commands) == 0 {
		return nil
	}
	cmds := d.commands
	defer func() { d.commands = d.commands[:0] }()

	n := min(d.opts.workers*d.opts.bandsPerTask, d.res.Height)
	if n <= 0 {
		return nil
	}
	rows := (d.res.Height + n - 1) / n
	counts := make([]int, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			band := d.raster.Band(i*rows, (i+1)*rows)
			for _, cmd := range cmds {
				band.execute(cmd)
			}
			counts[i] = band.Written()
			return nil
		})
	}

	err := g.Wait()
	for _, c := range counts {
		d.stats.Pixels += c
	}
	if err != nil {
		Logger().Warn("flush interrupted", "commands", len(cmds), "err", err)
		return fmt.Errorf("flush: %w", err)
	}
	Logger().Debug("frame flushed", "bands", n, "stats", d.Stats())
	return nil
}

func (r *Rasterizer) execute(cmd command) {
	switch cmd.kind {
	case cmdTriangle:
		r.FillTriangle(cmd.tri, cmd.color)
	case cmdOutline:
		r.DrawTriangleOutline(cmd.tri, cmd.color)
	case cmdLine:
		r.DrawLine(cmd.tri.First, cmd.tri.Second, cmd.color)
	case cmdPixel:
		r.DrawPixel(cmd.tri.First, cmd.color)
	case cmdRect:
		a, b := cmd.tri.First, cmd.tri.Second
		r.DrawRect(int(a.X), int(a.Y), int(b.X), int(b.Y), a.Z, cmd.color)
	}
}

// project takes a world triangle to NDC. It fails when a vertex is at or
// behind the eye, when any depth reaches the far plane, or when all three
// vertices lie beyond the same side edge.
func project(t geom.Triangle[geom.World], viewProj math3d.Mat4) (geom.Triangle[geom.NDC], bool) {
	var v [3]math3d.Vec3
	for i, p := range t.Vertices() {
		clip := viewProj.MulVec4(math3d.Point(p))
		if clip.W <= math3d.Epsilon {
			return geom.Triangle[geom.NDC]{}, false
		}
		v[i] = clip.PerspectiveDivide()
	}

	for _, p := range v {
		if p.Z >= 1 {
			return geom.Triangle[geom.NDC]{}, false
		}
	}
	if allBeyond(v, func(p math3d.Vec3) float64 { return p.X }) ||
		allBeyond(v, func(p math3d.Vec3) float64 { return p.Y }) {
		return geom.Triangle[geom.NDC]{}, false
	}
	return geom.Tri[geom.NDC](v[0], v[1], v[2]), true
}

func allBeyond(v [3]math3d.Vec3, axis func(math3d.Vec3) float64) bool {
	below, above := 0, 0
	for _, p := range v {
		switch c := axis(p); {
		case c < -1:
			below++
		case c > 1:
			above++
		}
	}
	return below == 3 || above == 3
}
