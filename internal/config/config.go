// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings, including the scene to show.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
	Scene   SceneConfig   `yaml:"scene"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	ShowFPS    bool   `yaml:"show_fps"`

	// ScreenshotDir receives F12 screenshots.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// RenderConfig holds fixed pipeline state.
type RenderConfig struct {
	ClearColor       [4]float32 `yaml:"clear_color"`
	AmbientStrength  float32    `yaml:"ambient_strength"`
	SpecularStrength float32    `yaml:"specular_strength"`
	CullBackFaces    bool       `yaml:"cull_back_faces"`
}

// CameraConfig holds the initial camera. Rotation is a quaternion x, y, z, w.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Rotation [4]float32 `yaml:"rotation"`
	FOV      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Speed    float32    `yaml:"speed"`
}

// AssetsConfig holds asset source settings. When BaseURL is set assets are
// fetched over HTTP, otherwise they are read from Root.
type AssetsConfig struct {
	Root         string        `yaml:"root"`
	BaseURL      string        `yaml:"base_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	HotReload    bool          `yaml:"hot_reload"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// SceneConfig describes the entities and lights to create at startup.
type SceneConfig struct {
	Entities []EntityConfig `yaml:"entities"`
	Lights   []LightConfig  `yaml:"lights"`
}

// EntityConfig describes one entity. Texture paths are optional.
// Rotation and Spin are in radians and radians per second.
type EntityConfig struct {
	Name      string     `yaml:"name"`
	Mesh      string     `yaml:"mesh"`
	Albedo    string     `yaml:"albedo,omitempty"`
	Normal    string     `yaml:"normal,omitempty"`
	Roughness string     `yaml:"roughness,omitempty"`
	AO        string     `yaml:"ao,omitempty"`
	Position  [3]float32 `yaml:"position"`
	Rotation  [3]float32 `yaml:"rotation"`
	Scale     [3]float32 `yaml:"scale"`
	Spin      [3]float32 `yaml:"spin"`
}

// LightConfig describes one light. Kind is spot, area or directional.
// Direction, when absent, is derived from Azimuth and Elevation (degrees).
// Angle is the outer cone angle in degrees and only applies to spot lights.
type LightConfig struct {
	Kind        string      `yaml:"kind"`
	Position    [3]float32  `yaml:"position"`
	Color       [3]float32  `yaml:"color"`
	MaxDistance float32     `yaml:"max_distance"`
	Quadratic   float32     `yaml:"quadratic"`
	Linear      float32     `yaml:"linear"`
	Constant    float32     `yaml:"constant"`
	Direction   *[3]float32 `yaml:"direction,omitempty"`
	Azimuth     float32     `yaml:"azimuth,omitempty"`
	Elevation   float32     `yaml:"elevation,omitempty"`
	Angle       float32     `yaml:"angle"`
}

// Default returns a Config that shows the demo scene: one spinning mesh lit
// by a white light at the origin.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "lumen",
			Width:  1280,
			Height: 720,
			VSync:  true,

			ScreenshotDir: "screenshots",
		},
		Render: RenderConfig{
			ClearColor:       [4]float32{0, 0, 0, 1},
			AmbientStrength:  0.1,
			SpecularStrength: 0.5,
			CullBackFaces:    true,
		},
		Camera: CameraConfig{
			Rotation: [4]float32{0, 0, 0, 1},
			FOV:      45,
			Near:     0.1,
			Far:      10000,
			Speed:    5,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scene: SceneConfig{
			Entities: []EntityConfig{
				{
					Name:     "horns",
					Mesh:     "horns.mesh",
					Albedo:   "Albedo.png",
					Position: [3]float32{0, 0, -6},
					Scale:    [3]float32{12, 12, 12},
					Spin:     [3]float32{0, 1, 0},
				},
			},
			Lights: []LightConfig{
				{
					Kind:        "spot",
					Color:       [3]float32{1, 1, 1},
					MaxDistance: 10,
					Quadratic:   0.05,
					Direction:   &[3]float32{0, 0, -1},
					Angle:       360,
				},
			},
		},
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks values the renderer cannot work with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip range %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	for i, e := range c.Scene.Entities {
		if e.Mesh == "" {
			return fmt.Errorf("%w: entity %d (%q) has no mesh", ErrInvalidConfig, i, e.Name)
		}
	}
	for i, l := range c.Scene.Lights {
		switch l.Kind {
		case "", "spot", "area", "directional":
		default:
			return fmt.Errorf("%w: light %d has unknown kind %q", ErrInvalidConfig, i, l.Kind)
		}
	}
	return nil
}
