package config

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

// ParseColor reads "#rgb" or "#rrggbb". The leading '#' is optional.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func vec(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func radians(v [3]float64) math3d.Vec3 {
	return math3d.V3(math3d.Radians(v[0]), math3d.Radians(v[1]), math3d.Radians(v[2]))
}

// Resolution returns the validated output resolution.
func (c Config) Resolution() (render.Resolution, error) {
	return render.NewResolution(c.Width, c.Height)
}

// BackgroundColor returns the parsed background, black when unparsable.
func (c Config) BackgroundColor() color.RGBA {
	bg, err := ParseColor(c.Background)
	if err != nil {
		return render.ColorBlack
	}
	return bg
}

// Shader returns the configured lighting.
func (c Config) Shader() render.Shader {
	if c.Light.Unlit {
		return render.Unlit
	}
	return render.PointLight{Position: vec(c.Light.Position), Ambient: c.Light.Ambient}
}

// CameraAt builds the camera for turntable frame i.
func (c Config) CameraAt(frame int) *scene.Camera {
	cam := scene.NewCamera(scene.Profile{
		FOV:         math3d.Radians(c.Camera.FOV),
		AspectRatio: float64(c.Width) / float64(c.Height),
		Near:        c.Camera.Near,
		Far:         c.Camera.Far,
	})
	cam.SetPosition(vec(c.Camera.Position))

	r := radians(c.Camera.Rotation)
	if c.Camera.LookAt == nil {
		cam.SetRotation(r.X, r.Y, r.Z)
		if c.Frames > 1 {
			cam.Rotate(0, 2*math.Pi*float64(frame)/float64(c.Frames), 0)
		}
		return cam
	}

	target := vec(*c.Camera.LookAt)
	if c.Frames <= 1 {
		cam.LookAt(target)
		return cam
	}
	offset := cam.Position().Sub(target)
	radius := offset.Len()
	pitch := math.Asin(math3d.Clamp(offset.Y/radius, -1, 1))
	yaw := math.Atan2(-offset.X, -offset.Z)
	cam.Orbit(target, radius, yaw+2*math.Pi*float64(frame)/float64(c.Frames), pitch)
	return cam
}

// LoadObjects loads every configured mesh and places it in the world.
// Model files are recentered and scaled so their largest side equals Size.
func (c Config) LoadObjects() ([]*scene.Object, error) {
	objs := make([]*scene.Object, 0, len(c.Objects))
	for _, oc := range c.Objects {
		var (
			mesh *models.Mesh
			err  error
		)
		if oc.Model != "" {
			mesh, err = models.Load(oc.Model)
			if err == nil {
				mesh.Normalize(oc.Size)
			}
		} else {
			mesh, err = models.Primitive(oc.Primitive, oc.Size)
		}
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", oc.Name, err)
		}

		obj := scene.NewObject(oc.Name, mesh)
		obj.Transform = scene.Transform{
			Position: vec(oc.Position),
			Rotation: radians(oc.Rotation),
			Scale:    vec(oc.Scale),
		}
		obj.Wireframe = oc.Wireframe
		if oc.Color != "" {
			if obj.Color, err = ParseColor(oc.Color); err != nil {
				return nil, fmt.Errorf("object %s: %w", oc.Name, err)
			}
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
