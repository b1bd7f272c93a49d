package config

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

const tomlConfig = `
width = 64
height = 48
background = "#102030"
frames = 4

[camera]
position = [0.0, 0.0, -4.0]
look_at = [0.0, 0.0, 0.0]
fov = 45.0

[output]
path = "out/spin.webp"

[[objects]]
primitive = "cube"
size = 2.0
color = "#f00"
`

const yamlConfig = `
width: 64
height: 48
background: "#102030"
frames: 4
camera:
  position: [0, 0, -4]
  look_at: [0, 0, 0]
  fov: 45
output:
  path: out/spin.webp
objects:
  - primitive: cube
    size: 2
    color: "#f00"
`

const jsonConfig = `{
  "width": 64,
  "height": 48,
  "background": "#102030",
  "frames": 4,
  "camera": {"position": [0, 0, -4], "look_at": [0, 0, 0], "fov": 45},
  "output": {"path": "out/spin.webp"},
  "objects": [{"primitive": "cube", "size": 2, "color": "#f00"}]
}`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadFormatsAgree(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"job.toml": tomlConfig,
		"job.yaml": yamlConfig,
		"job.json": jsonConfig,
	}

	var loaded []Config
	for name, data := range files {
		cfg, err := Load(writeFile(t, dir, name, data))
		require.NoError(t, err, name)
		assert.Equal(t, dir, cfg.BaseDir)
		cfg.BaseDir = ""
		loaded = append(loaded, cfg)
	}

	want := loaded[0]
	assert.Equal(t, 64, want.Width)
	assert.Equal(t, 4, want.Frames)
	require.NotNil(t, want.Camera.LookAt)
	assert.Equal(t, [3]float64{0, 0, -4}, want.Camera.Position)
	require.Len(t, want.Objects, 1)
	assert.Equal(t, "cube", want.Objects[0].Primitive)
	for _, cfg := range loaded[1:] {
		assert.Equal(t, want, cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"bad.toml": "widht = 10\n",
		"bad.yaml": "widht: 10\n",
		"bad.json": `{"widht": 10}`,
	} {
		_, err := Load(writeFile(t, dir, name, data))
		assert.Error(t, err, name)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Parse([]byte("{}"), ".ini")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
	assert.Equal(t, 1, cfg.Frames)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, 1, cfg.Output.Scale)
	assert.Equal(t, [3]float64{4, 10, 2}, cfg.Light.Position)
	assert.InDelta(t, 0.2, cfg.Light.Ambient, 1e-12)
	require.NotNil(t, cfg.Camera.LookAt)
	require.Len(t, cfg.Objects, 1)
	assert.Equal(t, "cube-0", cfg.Objects[0].Name)
	assert.Equal(t, [3]float64{1, 1, 1}, cfg.Objects[0].Scale)
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg, err := Parse([]byte(tomlConfig), ".toml")
	require.NoError(t, err)
	cfg.BaseDir = "scenes"

	cfg.Resolve(Flags{
		Width:     100,
		Frames:    1,
		Output:    "shot.tga",
		Scale:     2,
		Models:    []string{"teapot.obj"},
		Wireframe: true,
	})
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
	assert.Equal(t, 1, cfg.Frames)
	assert.Equal(t, "shot.tga", cfg.Output.Path)
	assert.Equal(t, "tga", cfg.Output.Format, "format follows the overridden path")
	require.Len(t, cfg.Objects, 2)
	assert.Equal(t, "teapot.obj", cfg.Objects[1].Model, "flag models stay relative to the working directory")
	assert.Equal(t, "teapot", cfg.Objects[1].Name)
	assert.True(t, cfg.Objects[1].Wireframe)
}

func TestResolveFormatFromPath(t *testing.T) {
	cfg := Config{Output: OutputConfig{Path: "a.tga"}}
	cfg.Resolve(Flags{})
	assert.Equal(t, "tga", cfg.Output.Format)
}

func TestResolveRelativeModelPaths(t *testing.T) {
	cfg := Config{
		BaseDir: "scenes",
		Objects: []ObjectConfig{
			{Model: "ship.glb"},
			{Model: "/abs/ship.glb"},
		},
	}
	cfg.Resolve(Flags{})
	assert.Equal(t, filepath.Join("scenes", "ship.glb"), cfg.Objects[0].Model)
	assert.Equal(t, "/abs/ship.glb", cfg.Objects[1].Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad background", func(c *Config) { c.Background = "#12" }},
		{"fov", func(c *Config) { c.Camera.FOV = 180 }},
		{"clip range", func(c *Config) { c.Camera.Far = c.Camera.Near }},
		{"ambient", func(c *Config) { c.Light.Ambient = 1.5 }},
		{"format", func(c *Config) { c.Output.Format = "gif" }},
		{"object source", func(c *Config) { c.Objects[0].Model = "x.obj" }},
		{"object size", func(c *Config) { c.Objects[0].Size = -1 }},
		{"object color", func(c *Config) { c.Objects[0].Color = "red" }},
		{"look at position", func(c *Config) { c.Camera.LookAt = &c.Camera.Position }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(Flags{})
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestFramePath(t *testing.T) {
	cfg := Config{Frames: 1, Output: OutputConfig{Path: "out/a.png"}}
	assert.Equal(t, "out/a.png", cfg.FramePath(0))

	cfg.Frames = 12
	assert.Equal(t, "out/a_007.png", cfg.FramePath(7))

	cfg.Output.Path = "out/f%02d.png"
	assert.Equal(t, "out/f07.png", cfg.FramePath(7))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 255}, c)

	c, err = ParseColor("f80")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0x88, 0x00, 255}, c)

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestCameraTurntable(t *testing.T) {
	var cfg Config
	cfg.Frames = 4
	cfg.Camera.Position = [3]float64{0, 0, -4}
	cfg.Camera.LookAt = &[3]float64{0, 0, 0}
	cfg.Resolve(Flags{})

	first := cfg.CameraAt(0)
	assert.True(t, first.Position().AlmostEqual(math3d.V3(0, 0, -4), 1e-9), "frame 0 = %v", first.Position())
	assert.True(t, first.Forward().AlmostEqual(math3d.Forward(), 1e-9))

	half := cfg.CameraAt(2)
	assert.True(t, half.Position().AlmostEqual(math3d.V3(0, 0, 4), 1e-9), "frame 2 = %v", half.Position())
	assert.True(t, half.Forward().AlmostEqual(math3d.V3(0, 0, -1), 1e-9))

	assert.InDelta(t, 320.0/180.0, first.Profile().AspectRatio, 1e-12, "aspect follows the resolution")
}

func TestCameraFixedRotation(t *testing.T) {
	cfg := Config{Camera: CameraConfig{Rotation: [3]float64{0, 90, 0}}}
	cfg.Resolve(Flags{})

	cam := cfg.CameraAt(0)
	assert.Nil(t, cfg.Camera.LookAt)
	assert.InDelta(t, math.Pi/2, cam.Rotation().Y, 1e-12)
	assert.True(t, cam.Forward().AlmostEqual(math3d.V3(1, 0, 0), 1e-9))
}

func TestShader(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	assert.Equal(t, render.DefaultLight(), cfg.Shader())

	cfg.Light.Unlit = true
	_, ok := cfg.Shader().(render.ShaderFunc)
	assert.True(t, ok)
}

func TestLoadObjects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.obj", "v 0 0 0\nv 4 0 0\nv 0 2 0\nf 1 2 3\n")
	path := writeFile(t, dir, "job.yaml", `
objects:
  - model: tri.obj
    size: 2
    position: [1, 0, 0]
  - primitive: quad
    color: "#00ff00"
    wireframe: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{})
	require.NoError(t, cfg.Validate())

	objs, err := cfg.LoadObjects()
	require.NoError(t, err)
	require.Len(t, objs, 2)

	tri := objs[0]
	assert.Equal(t, "tri", tri.Name)
	assert.Equal(t, 1, tri.Mesh.TriangleCount())
	assert.Equal(t, math3d.V3(1, 0, 0), tri.Transform.Position)
	lo, hi := tri.Mesh.(scene.BoundedMesh).Bounds()
	assert.InDelta(t, 2, hi.X-lo.X, 1e-9, "normalized to size")

	quad := objs[1]
	assert.True(t, quad.Wireframe)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, quad.Color)
}

func TestLoadObjectsMissingModel(t *testing.T) {
	cfg := Config{Objects: []ObjectConfig{{Model: filepath.Join(t.TempDir(), "nope.obj")}}}
	cfg.Resolve(Flags{})
	_, err := cfg.LoadObjects()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
