package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration file.
type Format int

const (
	// FormatTOML is a TOML document.
	FormatTOML Format = iota
	// FormatYAML is a YAML document.
	FormatYAML
)

var (
	// ErrUnsupportedFormat is returned for configuration files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Insets holds four per-side values.
type Insets struct {
	Top    float32 `toml:"top" yaml:"top"`
	Bottom float32 `toml:"bottom" yaml:"bottom"`
	Left   float32 `toml:"left" yaml:"left"`
	Right  float32 `toml:"right" yaml:"right"`
}

func (i Insets) insets() common.Insets {
	return common.Insets{Top: i.Top, Bottom: i.Bottom, Left: i.Left, Right: i.Right}
}

// ViewerConfig selects a viewer preset and overrides individual options. Pointer fields left unset keep the
// preset's value.
type ViewerConfig struct {
	// Preset is "base" (the default) or "showcase".
	Preset              string    `toml:"preset" yaml:"preset"`
	ToneMappingExposure *float32  `toml:"tone_mapping_exposure" yaml:"tone_mapping_exposure"`
	Padding             *Insets   `toml:"padding" yaml:"padding"`
	AngularOffset       []float32 `toml:"angular_offset" yaml:"angular_offset"`
	FitAxis             []float32 `toml:"fit_axis" yaml:"fit_axis"`
	FitRadius           float32   `toml:"fit_radius" yaml:"fit_radius"`
	OrthographicSize    *float32  `toml:"orthographic_size" yaml:"orthographic_size"`
	ViewportOffset      *Insets   `toml:"viewport_offset" yaml:"viewport_offset"`
	ClearColor          string    `toml:"clear_color" yaml:"clear_color"`
	Samples             int       `toml:"samples" yaml:"samples"`
	UseEffects          bool      `toml:"use_effects" yaml:"use_effects"`
	UseOrthographic     bool      `toml:"use_orthographic" yaml:"use_orthographic"`
}

// WindowConfig describes the desktop window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  *bool  `toml:"vsync" yaml:"vsync"`
}

// Config is a viewer configuration file: window and viewer settings plus a manifest of the resources to register.
// Object and Environment name the resources the scene is built from.
type Config struct {
	AssetRoot   string              `toml:"asset_root" yaml:"asset_root"`
	Object      string              `toml:"object" yaml:"object"`
	Environment string              `toml:"environment" yaml:"environment"`
	Window      WindowConfig        `toml:"window" yaml:"window"`
	Viewer      ViewerConfig        `toml:"viewer" yaml:"viewer"`
	Resources   []resource.Resource `toml:"resources" yaml:"resources"`
}

// FormatFor picks the format from the file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the file format
//   - error: ErrUnsupportedFormat for extensions other than .toml, .yaml and .yml
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads and validates the configuration at path. A leading ~ is expanded to the home directory, and so is
// one in AssetRoot. A relative AssetRoot is resolved against the directory of the file.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	format, err := FormatFor(expanded)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", expanded, err)
	}

	if c.AssetRoot != "" {
		root, err := homedir.Expand(c.AssetRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to expand asset root: %w", err)
		}
		if !filepath.IsAbs(root) {
			root = filepath.Join(filepath.Dir(expanded), root)
		}
		c.AssetRoot = root
	}
	return c, nil
}

// Decode parses and validates a configuration document. Unknown keys are rejected.
//
// Parameters:
//   - data: the document
//   - format: the document's encoding
//
// Returns:
//   - *Config: the decoded configuration
//   - error: error if decoding or validation fails
func Decode(data []byte, format Format) (*Config, error) {
	c := &Config{}
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the resource manifest and the viewer settings.
//
// Returns:
//   - error: an error wrapping ErrInvalid describing the first problem found
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Resources))
	for i, r := range c.Resources {
		if r.ID == "" {
			return fmt.Errorf("%w: resource %d has no id", ErrInvalid, i)
		}
		if r.URL == "" {
			return fmt.Errorf("%w: resource %q has no url", ErrInvalid, r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: resource %q is listed twice", ErrInvalid, r.ID)
		}
		seen[r.ID] = true
	}

	if err := c.checkReference("object", c.Object, resource.TypeMeshBundle); err != nil {
		return err
	}
	if err := c.checkReference("environment", c.Environment, resource.TypeEnvironmentMap); err != nil {
		return err
	}

	switch c.Viewer.Preset {
	case "", "base", "showcase":
	default:
		return fmt.Errorf("%w: unknown viewer preset %q", ErrInvalid, c.Viewer.Preset)
	}
	if n := len(c.Viewer.AngularOffset); n != 0 && n != 2 {
		return fmt.Errorf("%w: angular_offset needs 2 values, got %d", ErrInvalid, n)
	}
	if n := len(c.Viewer.FitAxis); n != 0 && n != 3 {
		return fmt.Errorf("%w: fit_axis needs 3 values, got %d", ErrInvalid, n)
	}
	if c.Viewer.ClearColor != "" {
		if _, err := ParseColor(c.Viewer.ClearColor); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("%w: negative window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	return nil
}

func (c *Config) checkReference(field, id string, want resource.ResourceType) error {
	if id == "" {
		return nil
	}
	r, ok := c.Resource(id)
	if !ok {
		return fmt.Errorf("%w: %s %q is not a listed resource", ErrInvalid, field, id)
	}
	if r.Type != want {
		return fmt.Errorf("%w: %s %q is a %s, not a %s", ErrInvalid, field, id, r.Type, want)
	}
	return nil
}

// Resource returns the listed resource with the given id.
func (c *Config) Resource(id string) (resource.Resource, bool) {
	for _, r := range c.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return resource.Resource{}, false
}

// ViewerOptions resolves the preset and applies the overrides.
//
// Returns:
//   - viewer.Options: the viewer options
//   - error: error if the clear color cannot be parsed
func (c *Config) ViewerOptions() (viewer.Options, error) {
	vc := c.Viewer
	o := viewer.DefaultOptions()
	if vc.Preset == "showcase" {
		o = viewer.ShowcaseOptions()
	}

	if vc.ToneMappingExposure != nil {
		o.ToneMappingExposure = *vc.ToneMappingExposure
	}
	if vc.Padding != nil {
		o.Padding = vc.Padding.insets()
	}
	if len(vc.AngularOffset) == 2 {
		o.AngularOffset = common.Vec2{X: vc.AngularOffset[0], Y: vc.AngularOffset[1]}
	}
	if len(vc.FitAxis) == 3 {
		o.FitAxis = common.Vec3{X: vc.FitAxis[0], Y: vc.FitAxis[1], Z: vc.FitAxis[2]}
	}
	if vc.FitRadius != 0 {
		o.FitRadius = vc.FitRadius
	}
	if vc.OrthographicSize != nil {
		o.OrthographicSize = *vc.OrthographicSize
	}
	if vc.ViewportOffset != nil {
		o.ViewportOffset = vc.ViewportOffset.insets()
	}
	if vc.ClearColor != "" {
		color, err := ParseColor(vc.ClearColor)
		if err != nil {
			return viewer.Options{}, err
		}
		o.ClearColor = color
	}
	if vc.Samples > 0 {
		o.Samples = vc.Samples
	}
	o.UseEffects = vc.UseEffects
	o.UseOrthographic = vc.UseOrthographic
	return o, nil
}

// ParseColor parses a "#rrggbb" or "rrggbb" hex color.
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - common.Color: the opaque color
//   - error: error if s is not six hex digits
func ParseColor(s string) (common.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return common.Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return common.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return common.NewColorHex(uint32(v)), nil
}
