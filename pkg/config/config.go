// Package config loads render jobs from TOML, YAML or JSON files and turns
// them into scenes.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/softrender/pkg/imageio"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config describes one render job.
type Config struct {
	Width      int    `json:"width" toml:"width" yaml:"width"`
	Height     int    `json:"height" toml:"height" yaml:"height"`
	Background string `json:"background" toml:"background" yaml:"background"`

	// Workers is the number of frames rendered at once, or the number of
	// raster bands when a single frame is rendered.
	Workers int `json:"workers" toml:"workers" yaml:"workers"`
	// Frames > 1 renders a turntable: the camera orbits its target once.
	Frames int `json:"frames" toml:"frames" yaml:"frames"`

	Camera  CameraConfig   `json:"camera" toml:"camera" yaml:"camera"`
	Light   LightConfig    `json:"light" toml:"light" yaml:"light"`
	Output  OutputConfig   `json:"output" toml:"output" yaml:"output"`
	Objects []ObjectConfig `json:"objects" toml:"objects" yaml:"objects"`

	// Debug geometry.
	Grid bool `json:"grid" toml:"grid" yaml:"grid"`
	Axes bool `json:"axes" toml:"axes" yaml:"axes"`

	// BaseDir resolves relative model paths. Load sets it to the config
	// file's directory.
	BaseDir string `json:"-" toml:"-" yaml:"-"`
}

// CameraConfig places the camera. Angles are in degrees.
type CameraConfig struct {
	Position [3]float64  `json:"position" toml:"position" yaml:"position"`
	LookAt   *[3]float64 `json:"look_at,omitempty" toml:"look_at,omitempty" yaml:"look_at,omitempty"`
	Rotation [3]float64  `json:"rotation" toml:"rotation" yaml:"rotation"`
	FOV      float64     `json:"fov" toml:"fov" yaml:"fov"`
	Near     float64     `json:"near" toml:"near" yaml:"near"`
	Far      float64     `json:"far" toml:"far" yaml:"far"`
}

// LightConfig is the point light. Unlit disables shading.
type LightConfig struct {
	Position [3]float64 `json:"position" toml:"position" yaml:"position"`
	Ambient  float64    `json:"ambient" toml:"ambient" yaml:"ambient"`
	Unlit    bool       `json:"unlit" toml:"unlit" yaml:"unlit"`
}

// OutputConfig controls image export.
type OutputConfig struct {
	// Path of the image. For turntables a "%d" verb receives the frame
	// index; without one the index is appended to the file name.
	Path   string `json:"path" toml:"path" yaml:"path"`
	Format string `json:"format" toml:"format" yaml:"format"`
	Scale  int    `json:"scale" toml:"scale" yaml:"scale"`
	Stats  bool   `json:"stats" toml:"stats" yaml:"stats"`
}

// ObjectConfig is one mesh instance. Exactly one of Model and Primitive is
// set. Rotation is in degrees.
type ObjectConfig struct {
	Name      string     `json:"name" toml:"name" yaml:"name"`
	Model     string     `json:"model,omitempty" toml:"model,omitempty" yaml:"model,omitempty"`
	Primitive string     `json:"primitive,omitempty" toml:"primitive,omitempty" yaml:"primitive,omitempty"`
	Size      float64    `json:"size" toml:"size" yaml:"size"`
	Position  [3]float64 `json:"position" toml:"position" yaml:"position"`
	Rotation  [3]float64 `json:"rotation" toml:"rotation" yaml:"rotation"`
	Scale     [3]float64 `json:"scale" toml:"scale" yaml:"scale"`
	Color     string     `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Wireframe bool       `json:"wireframe" toml:"wireframe" yaml:"wireframe"`
}

// Load reads a config file, choosing the decoder from the extension.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml", ".yml"
// or ".json").
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported extension %q", ErrInvalid, ext)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width     int
	Height    int
	Workers   int
	Frames    int
	Output    string
	Format    string
	Scale     int
	Models    []string
	Wireframe bool
	Stats     bool
}

// Resolve applies CLI overrides, then fills unset fields with defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Output != "" {
		c.Output.Path = flags.Output
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.Scale > 0 {
		c.Output.Scale = flags.Scale
	}
	if flags.Stats {
		c.Output.Stats = true
	}
	fromFile := len(c.Objects)
	for _, m := range flags.Models {
		c.Objects = append(c.Objects, ObjectConfig{Model: m, Wireframe: flags.Wireframe})
	}

	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 180
	}
	if c.Background == "" {
		c.Background = "#1e1e28"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}

	cam := &c.Camera
	if cam.Position == [3]float64{} && cam.LookAt == nil && cam.Rotation == [3]float64{} {
		cam.Position = [3]float64{0, 1.5, -5}
		cam.LookAt = &[3]float64{0, 0, 0}
	}
	if cam.FOV == 0 {
		cam.FOV = 60
	}
	if cam.Near == 0 {
		cam.Near = 0.1
	}
	if cam.Far == 0 {
		cam.Far = 100
	}

	if c.Light.Position == [3]float64{} && c.Light.Ambient == 0 {
		c.Light.Position = [3]float64{4, 10, 2}
		c.Light.Ambient = 0.2
	}

	if c.Output.Path == "" {
		c.Output.Path = "frame.png"
	}
	if c.Output.Format == "" {
		if f, err := imageio.FormatFromPath(c.Output.Path); err == nil {
			c.Output.Format = string(f)
		} else {
			c.Output.Format = string(imageio.PNG)
		}
	}
	if c.Output.Scale <= 0 {
		c.Output.Scale = 1
	}

	if len(c.Objects) == 0 {
		c.Objects = []ObjectConfig{{Primitive: "cube"}}
	}
	for i := range c.Objects {
		o := &c.Objects[i]
		if o.Size == 0 {
			o.Size = 1
		}
		if o.Scale == [3]float64{} {
			o.Scale = [3]float64{1, 1, 1}
		}
		if o.Name == "" {
			o.Name = defaultName(*o, i)
		}
		if i < fromFile && o.Model != "" && c.BaseDir != "" && !filepath.IsAbs(o.Model) {
			o.Model = filepath.Join(c.BaseDir, o.Model)
		}
	}
}

func defaultName(o ObjectConfig, i int) string {
	if o.Model != "" {
		return strings.TrimSuffix(filepath.Base(o.Model), filepath.Ext(o.Model))
	}
	return fmt.Sprintf("%s-%d", o.Primitive, i)
}

// Validate reports the first problem found, wrapped in ErrInvalid. Call it
// after Resolve.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Frames < 1 {
		return fmt.Errorf("%w: frames must be at least 1", ErrInvalid)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %w", ErrInvalid, err)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %v outside (0, 180)", ErrInvalid, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip range [%v, %v]", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.LookAt != nil && *c.Camera.LookAt == c.Camera.Position {
		return fmt.Errorf("%w: camera look_at equals its position", ErrInvalid)
	}
	if c.Light.Ambient < 0 || c.Light.Ambient > 1 {
		return fmt.Errorf("%w: light ambient %v outside [0, 1]", ErrInvalid, c.Light.Ambient)
	}
	if _, err := imageio.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalid, err)
	}
	if c.Output.Scale < 1 {
		return fmt.Errorf("%w: output scale must be at least 1", ErrInvalid)
	}
	for i, o := range c.Objects {
		if (o.Model == "") == (o.Primitive == "") {
			return fmt.Errorf("%w: object %d: set exactly one of model and primitive", ErrInvalid, i)
		}
		if o.Size <= 0 {
			return fmt.Errorf("%w: object %d: size must be positive", ErrInvalid, i)
		}
		if o.Color != "" {
			if _, err := ParseColor(o.Color); err != nil {
				return fmt.Errorf("%w: object %d: %w", ErrInvalid, i, err)
			}
		}
	}
	return nil
}

// FramePath returns the output path of turntable frame i.
func (c Config) FramePath(i int) string {
	if c.Frames <= 1 {
		return c.Output.Path
	}
	if strings.Contains(c.Output.Path, "%") {
		return fmt.Sprintf(c.Output.Path, i)
	}
	ext := filepath.Ext(c.Output.Path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(c.Output.Path, ext), i, ext)
}
