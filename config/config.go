// Package config handles renderer configuration loading and validation.
package config

import (
	"errors"
	"fmt"

	"batch_renderer/simulation"
)

// ErrInvalid marks a configuration that cannot be run.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all renderer settings.
type Config struct {
	Window     WindowConfig      `yaml:"window"`
	Scene      SceneConfig       `yaml:"scene"`
	Shaders    ShaderConfig      `yaml:"shaders"`
	Simulation simulation.Params `yaml:"simulation"`
	Camera     CameraConfig      `yaml:"camera"`
	Benchmark  BenchmarkConfig   `yaml:"benchmark"`
	Report     ReportConfig      `yaml:"report"`
	Vulkan     VulkanConfig      `yaml:"vulkan"`
	Logging    LoggingConfig     `yaml:"logging"`
}

type WindowConfig struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// SceneConfig describes the batched objects. MaxObjects sizes the uniform block, Objects must not
// exceed it.
type SceneConfig struct {
	Objects         int      `yaml:"objects"`
	MaxObjects      int      `yaml:"max_objects"`
	Meshes          []string `yaml:"meshes,omitempty"` // .mesh or .stl files, empty uses the built-in cube
	AtlasResolution int      `yaml:"atlas_resolution"`
	AtlasTexture    string   `yaml:"atlas_texture"` // empty generates a checker atlas
	Seed            uint64   `yaml:"seed"`          // 0 seeds from the clock
	ExportMesh      string   `yaml:"export_mesh"`   // writes the batched scene as .mesh when set
}

// ShaderConfig holds paths to pre-compiled SPIR-V binaries.
type ShaderConfig struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type CameraConfig struct {
	Speed float32 `yaml:"speed"`
}

// BenchmarkConfig closes the renderer after Frames frames and appends the average fps to
// ResultDir/log_<RunID>.txt.
type BenchmarkConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Frames    uint64 `yaml:"frames"`
	RunID     uint32 `yaml:"run_id"`
	ResultDir string `yaml:"result_dir"`
}

type ReportConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval uint64 `yaml:"interval"` // in frames
}

type VulkanConfig struct {
	Validation       bool     `yaml:"validation"`
	ValidationLayers []string `yaml:"validation_layers,omitempty"`
	DeviceExtensions []string `yaml:"device_extensions,omitempty"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Batched Instance Renderer",
			Width:      1280,
			Height:     720,
			ClearColor: [4]float32{0.12, 0.12, 0.12, 1},
		},
		Scene: SceneConfig{
			Objects:         16,
			MaxObjects:      64,
			AtlasResolution: 1080,
		},
		Shaders: ShaderConfig{
			Vertex:   "shaders_spv/vert.spv",
			Fragment: "shaders_spv/frag.spv",
		},
		Simulation: simulation.DefaultParams(),
		Camera: CameraConfig{
			Speed: 0.1,
		},
		Benchmark: BenchmarkConfig{
			Enabled:   false,
			Frames:    10000,
			ResultDir: ".",
		},
		Report: ReportConfig{
			Enabled:  true,
			Interval: 30,
		},
		Vulkan: VulkanConfig{
			Validation:       false,
			ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
			DeviceExtensions: []string{"VK_KHR_swapchain"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting the renderer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Scene.MaxObjects <= 0 {
		errs = append(errs, fmt.Errorf("max_objects %d must be positive", c.Scene.MaxObjects))
	}
	if c.Scene.Objects <= 0 || c.Scene.Objects > c.Scene.MaxObjects {
		errs = append(errs, fmt.Errorf("objects %d must be within [1, %d]", c.Scene.Objects, c.Scene.MaxObjects))
	}
	if c.Scene.AtlasResolution <= 0 {
		errs = append(errs, fmt.Errorf("atlas_resolution %d must be positive", c.Scene.AtlasResolution))
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		errs = append(errs, errors.New("vertex and fragment shader paths are required"))
	}
	if c.Benchmark.Enabled && c.Benchmark.Frames == 0 {
		errs = append(errs, errors.New("benchmark needs a frame count"))
	}
	if c.Report.Enabled && c.Report.Interval == 0 {
		errs = append(errs, errors.New("report interval must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
