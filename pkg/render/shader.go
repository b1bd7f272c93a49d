package render

import (
	"image/color"

	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
)

// Shader picks the flat color of a world-space triangle. It runs once per
// source triangle, before clipping.
type Shader interface {
	Shade(tri geom.Triangle[geom.World], normal math3d.Vec3, base color.RGBA) color.RGBA
}

// ShaderFunc adapts a function to Shader.
type ShaderFunc func(tri geom.Triangle[geom.World], normal math3d.Vec3, base color.RGBA) color.RGBA

// Shade calls f.
func (f ShaderFunc) Shade(tri geom.Triangle[geom.World], normal math3d.Vec3, base color.RGBA) color.RGBA {
	return f(tri, normal, base)
}

// PointLight is diffuse lighting from a single point plus a constant
// ambient term: intensity = min(max(0, L·N) + Ambient, 1), where L is the
// unit direction from the triangle's center to the light.
type PointLight struct {
	Position math3d.Vec3
	Ambient  float64
}

// DefaultLight is the light used when no shader is configured.
func DefaultLight() PointLight {
	return PointLight{Position: math3d.V3(4, 10, 2), Ambient: 0.2}
}

// Shade implements Shader.
func (l PointLight) Shade(tri geom.Triangle[geom.World], normal math3d.Vec3, base color.RGBA) color.RGBA {
	dir := l.Position.Sub(tri.Center()).Normalize()
	intensity := min(max(0, dir.Dot(normal))+l.Ambient, 1)
	return scaleColor(base, intensity)
}

// Unlit returns the base color unchanged.
var Unlit = ShaderFunc(func(_ geom.Triangle[geom.World], _ math3d.Vec3, base color.RGBA) color.RGBA {
	return base
})

func scaleColor(c color.RGBA, f float64) color.RGBA {
	ch := func(v uint8) uint8 {
		return uint8(math3d.Clamp(float64(v)*f, 0, 255))
	}
	return color.RGBA{ch(c.R), ch(c.G), ch(c.B), c.A}
}
