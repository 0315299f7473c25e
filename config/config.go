// Package config defines the configuration file of the depthtruth tools.
package config

import (
	"encoding/binary"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/assets"
	"go.viam.com/depthtruth/rimage"
	"go.viam.com/depthtruth/utils"
)

// Defaults used when the config file leaves a field empty.
const (
	DefaultSession   = "dataset"
	DefaultModelsDir = "models"
	DefaultByteOrder = "little"
)

// Config describes where sessions and assets live and how frames are processed.
type Config struct {
	ConfigFilePath string `json:"-"`

	Session string `json:"session"`
	Models  string `json:"models"`
	Objects string `json:"objects"`
	// Workers is the number of frames processed at once. Zero means one.
	Workers             int           `json:"workers"`
	DepthByteOrder      string        `json:"depthByteOrder"`
	PointCloudByteOrder string        `json:"pointCloudByteOrder"`
	Render              *RenderConfig `json:"render,omitempty"`
	Debug               bool          `json:"debug"`
}

// RenderConfig controls the color renderings written next to processed frames.
type RenderConfig struct {
	Method      string  `json:"method"`
	Radius      int     `json:"radius"`
	MaxDistance float32 `json:"maxDistance"`
	// Background is a hex color such as "#000000".
	Background string `json:"background"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Session == "" {
		c.Session = DefaultSession
	}
	if c.Models == "" {
		c.Models = DefaultModelsDir
	}
	if c.Objects == "" {
		c.Objects = assets.DefaultObjectsFile
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.DepthByteOrder == "" {
		c.DepthByteOrder = DefaultByteOrder
	}
	if c.PointCloudByteOrder == "" {
		c.PointCloudByteOrder = DefaultByteOrder
	}
}

// Ensure applies defaults and validates the config.
func (c *Config) Ensure() error {
	c.applyDefaults()
	return c.Validate("")
}

// Validate ensures all parts of the config are valid. Errors name the offending field relative
// to path.
func (c *Config) Validate(path string) error {
	if c.Workers < 0 {
		return goutils.NewConfigValidationError(join(path, "workers"),
			utils.NewConfigurationError("must not be negative, got %d", c.Workers))
	}
	if _, err := ParseByteOrder(c.DepthByteOrder); err != nil {
		return goutils.NewConfigValidationError(join(path, "depthByteOrder"), err)
	}
	if _, err := ParseByteOrder(c.PointCloudByteOrder); err != nil {
		return goutils.NewConfigValidationError(join(path, "pointCloudByteOrder"), err)
	}
	if c.Render != nil {
		if err := c.Render.Validate(join(path, "render")); err != nil {
			return err
		}
	}
	return nil
}

// DepthOrder returns the byte order of recorded depth planes.
func (c *Config) DepthOrder() binary.ByteOrder {
	order, err := ParseByteOrder(c.DepthByteOrder)
	if err != nil {
		return binary.LittleEndian
	}
	return order
}

// PointCloudOrder returns the byte order of recorded point cloud buffers.
func (c *Config) PointCloudOrder() binary.ByteOrder {
	order, err := ParseByteOrder(c.PointCloudByteOrder)
	if err != nil {
		return binary.LittleEndian
	}
	return order
}

// Validate ensures the render config names a known method, a usable radius and a color.
func (rc *RenderConfig) Validate(path string) error {
	if rc.Method != "" {
		if _, err := rimage.ParseConversionMethod(rc.Method); err != nil {
			return goutils.NewConfigValidationError(join(path, "method"), err)
		}
	}
	if rc.Radius < 0 {
		return goutils.NewConfigValidationError(join(path, "radius"),
			utils.NewConfigurationError("must not be negative, got %d", rc.Radius))
	}
	if rc.MaxDistance < 0 {
		return goutils.NewConfigValidationError(join(path, "maxDistance"),
			utils.NewConfigurationError("must not be negative, got %f", rc.MaxDistance))
	}
	if rc.Background != "" {
		if _, err := colorful.Hex(rc.Background); err != nil {
			return goutils.NewConfigValidationError(join(path, "background"),
				utils.NewConfigurationError("invalid color %q", rc.Background))
		}
	}
	return nil
}

// Options converts the render config into rendering options.
func (rc *RenderConfig) Options() (*rimage.RenderOptions, error) {
	opts := &rimage.RenderOptions{
		Method:      rimage.Plasma,
		Radius:      rc.Radius,
		MaxDistance: rc.MaxDistance,
	}
	if rc.Method != "" {
		method, err := rimage.ParseConversionMethod(rc.Method)
		if err != nil {
			return nil, err
		}
		opts.Method = method
	}
	opts.Background.A = 255
	if rc.Background != "" {
		c, err := colorful.Hex(rc.Background)
		if err != nil {
			return nil, utils.NewConfigurationError("invalid color %q", rc.Background)
		}
		r, g, b := c.RGB255()
		opts.Background.R, opts.Background.G, opts.Background.B = r, g, b
	}
	return opts, nil
}

// ParseByteOrder parses "little" or "big".
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "little", "little-endian", "le":
		return binary.LittleEndian, nil
	case "big", "big-endian", "be":
		return binary.BigEndian, nil
	default:
		return nil, utils.NewConfigurationError("unknown byte order %q", s)
	}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
