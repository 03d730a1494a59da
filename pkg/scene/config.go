// Package scene describes what to render: a model, a camera, shading and
// output settings, loadable from a YAML file.
package scene

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the size of a scene file.
const maxConfigSize = 1 << 20

// ErrInvalidConfig is returned by Validate and Load for unusable settings.
var ErrInvalidConfig = errors.New("scene: invalid config")

// Shading modes.
const (
	ShadingFlat    = "flat"    // single model color
	ShadingColor   = "color"   // per-vertex colors
	ShadingNormal  = "normal"  // normal mapped to RGB
	ShadingGouraud = "gouraud" // per-vertex diffuse lighting
)

// Built-in shapes usable instead of a model file.
var shapes = []string{"triangle", "quad", "cube", "sphere"}

// Config is a complete render description.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Camera    CameraConfig    `yaml:"camera"`
	Shading   string          `yaml:"shading"`
	Light     LightConfig     `yaml:"light"`
	Output    OutputConfig    `yaml:"output"`
	Animation AnimationConfig `yaml:"animation"`

	Workers  int `yaml:"workers"`   // <= 0 means GOMAXPROCS
	TileSize int `yaml:"tile_size"` // <= 0 means the rasterizer default
}

// ModelConfig selects the mesh.
type ModelConfig struct {
	Path      string     `yaml:"path"`  // .obj, .gltf or .glb
	Shape     string     `yaml:"shape"` // used when Path is empty
	Color     [3]float64 `yaml:"color"`
	Normalize bool       `yaml:"normalize"` // fit into the [-1, 1] cube
	Flat      bool       `yaml:"flat"`      // faceted normals
}

// CameraConfig places an orbit camera around the origin. Angles are in
// degrees.
type CameraConfig struct {
	Distance float64 `yaml:"distance"`
	Yaw      float64 `yaml:"yaw"`
	Pitch    float64 `yaml:"pitch"`
	FOV      float64 `yaml:"fov"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
}

// LightConfig is a directional light for gouraud shading.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction"`
	Ambient   float64    `yaml:"ambient"`
	Diffuse   float64    `yaml:"diffuse"`
}

// OutputConfig controls the framebuffer and the written image.
type OutputConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Scale      int        `yaml:"scale"` // integer upscale when saving
	Path       string     `yaml:"path"`
	Background [3]float64 `yaml:"background"`
}

// AnimationConfig describes a turntable animation.
type AnimationConfig struct {
	Frames  int     `yaml:"frames"`
	Degrees float64 `yaml:"degrees"` // total rotation
	Easing  string  `yaml:"easing"`  // "linear" or "spring"
}

// Default returns the configuration used when no file is given: a
// normal-colored sphere.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Shape:     "sphere",
			Color:     [3]float64{0.8, 0.8, 0.8},
			Normalize: true,
		},
		Camera: CameraConfig{
			Distance: 3,
			Yaw:      30,
			Pitch:    20,
			FOV:      60,
			Near:     0.1,
			Far:      100,
		},
		Shading: ShadingNormal,
		Light: LightConfig{
			Direction: [3]float64{0.5, 1, 0.75},
			Ambient:   0.3,
			Diffuse:   0.7,
		},
		Output: OutputConfig{
			Width:  320,
			Height: 240,
			Scale:  1,
			Path:   "out.png",
		},
		Animation: AnimationConfig{
			Frames:  36,
			Degrees: 360,
			Easing:  "linear",
		},
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scene: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a scene file.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("stat scene: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrInvalidConfig, path, info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c.Model.Path == "" && !slices.Contains(shapes, c.Model.Shape) {
		return fmt.Errorf("%w: model needs a path or one of the shapes %s", ErrInvalidConfig, strings.Join(shapes, ", "))
	}
	switch c.Shading {
	case ShadingFlat, ShadingColor, ShadingNormal, ShadingGouraud:
	default:
		return fmt.Errorf("%w: unknown shading %q", ErrInvalidConfig, c.Shading)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidConfig, c.Output.Width, c.Output.Height)
	}
	if c.Output.Scale < 1 {
		return fmt.Errorf("%w: output scale %d", ErrInvalidConfig, c.Output.Scale)
	}
	if c.Camera.Distance <= 0 {
		return fmt.Errorf("%w: camera distance %v", ErrInvalidConfig, c.Camera.Distance)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Animation.Frames < 1 {
		return fmt.Errorf("%w: %d animation frames", ErrInvalidConfig, c.Animation.Frames)
	}
	if c.Animation.Easing != "linear" && c.Animation.Easing != "spring" {
		return fmt.Errorf("%w: unknown easing %q", ErrInvalidConfig, c.Animation.Easing)
	}
	return nil
}
