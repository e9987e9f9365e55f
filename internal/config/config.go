// Package config loads grapher settings from YAML merged over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"grapher/internal/logging"
	"grapher/surface/colorramp"
	"grapher/surface/expr"
	"grapher/surface/pipeline"
	"grapher/surface/sample"
	"grapher/surface/view"
)

var ErrConfig = errors.New("config: invalid")

const (
	// DefaultExpr is the surface shown at startup.
	DefaultExpr = "sin(x) * cos(y)"
	// DefaultRange is the half-width of the square startup domain.
	DefaultRange = 3.0
	// DefaultResolution is the number of samples per axis.
	DefaultResolution = 21
	// DefaultRotX and DefaultRotY are the startup rotation in degrees.
	DefaultRotX = 30.0
	DefaultRotY = 30.0
	DefaultZoom = 0.8
	// DefaultClamp caps rendered heights.
	DefaultClamp = sample.DefaultClamp
	// DefaultAutoRotateStep is the auto-rotation speed in degrees per frame.
	DefaultAutoRotateStep = 0.5
	DefaultLogLevel       = "info"
)

// DefaultExamples are the expressions Tab cycles through.
var DefaultExamples = []string{
	"sin(x) * cos(y)",
	"x^2 + y^2",
	"sin(sqrt(x^2 + y^2))",
	"exp(-(x^2 + y^2))",
	"sin(x*y)",
}

type Config struct {
	Expr       string           `yaml:"expr"`
	Domain     DomainConfig     `yaml:"domain"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Zoom       float64          `yaml:"zoom"`
	Projection string           `yaml:"projection"`
	// Distance is the perspective camera distance; zero uses the view default.
	Distance float64 `yaml:"distance"`
	Clamp    float64 `yaml:"clamp"`
	Workers  int     `yaml:"workers"`

	Render   RenderConfig `yaml:"render"`
	Ramp     []StopConfig `yaml:"ramp"`
	Examples []string     `yaml:"examples"`
	// History is the bbolt file for expression history; empty disables it.
	History  string `yaml:"history"`
	LogLevel string `yaml:"log_level"`
}

type DomainConfig struct {
	XMin float64 `yaml:"xmin"`
	XMax float64 `yaml:"xmax"`
	YMin float64 `yaml:"ymin"`
	YMax float64 `yaml:"ymax"`
}

type ResolutionConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// RotationConfig holds angles in degrees.
type RotationConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type RenderConfig struct {
	Fill      bool `yaml:"fill"`
	Wireframe bool `yaml:"wireframe"`
	Points    bool `yaml:"points"`
	// Flat fills each triangle with one colour instead of interpolating.
	Flat           bool    `yaml:"flat"`
	AutoRotate     bool    `yaml:"auto_rotate"`
	AutoRotateStep float64 `yaml:"auto_rotate_step"`
	Background     string  `yaml:"background"`
	WireColor      string  `yaml:"wire_color"`
	// Raw disables fitting the surface into the unit cube.
	Raw bool `yaml:"raw"`
}

type StopConfig struct {
	At    float64 `yaml:"at"`
	Color string  `yaml:"color"`
}

// Default returns the startup configuration.
func Default() *Config {
	return &Config{
		Expr:       DefaultExpr,
		Domain:     DomainConfig{XMin: -DefaultRange, XMax: DefaultRange, YMin: -DefaultRange, YMax: DefaultRange},
		Resolution: ResolutionConfig{X: DefaultResolution, Y: DefaultResolution},
		Rotation:   RotationConfig{X: DefaultRotX, Y: DefaultRotY},
		Zoom:       DefaultZoom,
		Projection: view.Orthographic.String(),
		Clamp:      DefaultClamp,
		Render: RenderConfig{
			Fill:           true,
			Wireframe:      true,
			AutoRotateStep: DefaultAutoRotateStep,
			Background:     "#000000",
			WireColor:      colorramp.Hex(pipeline.DefaultWireColor),
		},
		Ramp: []StopConfig{
			{At: 0, Color: colorramp.Hex(colorramp.Blue)},
			{At: 0.5, Color: colorramp.Hex(colorramp.Yellow)},
			{At: 1, Color: colorramp.Hex(colorramp.Red)},
		},
		Examples: append([]string(nil), DefaultExamples...),
		LogLevel: DefaultLogLevel,
	}
}

// Load reads and validates the YAML file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field a frame or the shell depends on.
func (c *Config) Validate() error {
	if _, err := view.ParseProjection(c.Projection); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := pipeline.Validate(c.State()); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if _, err := expr.Parse(c.Expr); err != nil {
		return fmt.Errorf("%w: expr: %w", ErrConfig, err)
	}
	for i, ex := range c.Examples {
		if _, err := expr.Parse(ex); err != nil {
			return fmt.Errorf("%w: examples[%d]: %w", ErrConfig, i, err)
		}
	}
	if _, err := c.RampValue(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	for name, hex := range map[string]string{"background": c.Render.Background, "wire_color": c.Render.WireColor} {
		if _, err := colorramp.ParseHex(hex); err != nil {
			return fmt.Errorf("%w: render.%s: %w", ErrConfig, name, err)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d must be >= 0", ErrConfig, c.Workers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// State converts the configuration into the initial frame state.
func (c *Config) State() pipeline.State {
	proj, _ := view.ParseProjection(c.Projection)
	return pipeline.State{
		Expr: c.Expr,
		Domain: sample.Domain{
			XMin: c.Domain.XMin, XMax: c.Domain.XMax,
			YMin: c.Domain.YMin, YMax: c.Domain.YMax,
		},
		Resolution: sample.Resolution{NX: c.Resolution.X, NY: c.Resolution.Y},
		View: view.Transform{
			Rot: view.Angles{
				X: view.NormalizeAngle(view.Radians(c.Rotation.X)),
				Y: view.NormalizeAngle(view.Radians(c.Rotation.Y)),
				Z: view.NormalizeAngle(view.Radians(c.Rotation.Z)),
			},
			Zoom:       c.Zoom,
			Projection: proj,
			Distance:   c.Distance,
		},
		Fill:      c.Render.Fill,
		Wireframe: c.Render.Wireframe,
		Points:    c.Render.Points,
	}
}

// RampValue builds the colour ramp.
func (c *Config) RampValue() (colorramp.Ramp, error) {
	stops := make([]colorramp.Stop, 0, len(c.Ramp))
	for _, s := range c.Ramp {
		col, err := colorramp.ParseHex(s.Color)
		if err != nil {
			return colorramp.Ramp{}, err
		}
		stops = append(stops, colorramp.Stop{At: s.At, Color: col})
	}
	return colorramp.NewRamp(stops)
}

// PipelineOptions returns the pipeline settings. The configuration must be valid.
func (c *Config) PipelineOptions() pipeline.Options {
	ramp, _ := c.RampValue()
	wire, _ := colorramp.ParseHex(c.Render.WireColor)
	clamp := c.Clamp
	if clamp == 0 {
		clamp = -1
	}
	return pipeline.Options{
		Sampler:   sample.Options{Workers: c.Workers, Clamp: clamp},
		Ramp:      ramp,
		WireColor: wire,
		NoFit:     c.Render.Raw,
	}
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() logging.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}
