// Package config loads application settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ATLAS_SEGMENT_"

// Config holds the settings shared by the desktop app and segtool.
type Config struct {
	// AtlasDir holds one subdirectory per installed atlas
	AtlasDir string `yaml:"atlasDir" env:"ATLAS_DIR"`

	// TrackFileExt is the extension of saved track files
	TrackFileExt string `yaml:"trackFileExt" env:"TRACK_FILE_EXT"`

	// Point and spline display diameters and the paint brush diameter, in microns
	PointSize  float64 `yaml:"pointSize" env:"POINT_SIZE"`
	SplineSize float64 `yaml:"splineSize" env:"SPLINE_SIZE"`
	BrushSize  int     `yaml:"brushSize" env:"BRUSH_SIZE"`

	// SplinePoints is the number of samples along a traced track
	SplinePoints int `yaml:"splinePoints" env:"SPLINE_POINTS"`

	SummariseTracks  bool `yaml:"summariseTracks" env:"SUMMARISE_TRACKS"`
	CalculateVolumes bool `yaml:"calculateVolumes" env:"CALCULATE_VOLUMES"`

	// BoundariesLayer is removed from loaded projects before segmenting
	BoundariesLayer string `yaml:"boundariesLayer" env:"BOUNDARIES_LAYER"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"logLevel" env:"LOG_LEVEL"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		AtlasDir:         defaultAtlasDir(),
		TrackFileExt:     ".points",
		PointSize:        100,
		SplineSize:       50,
		BrushSize:        250,
		SplinePoints:     1000,
		SummariseTracks:  true,
		CalculateVolumes: true,
		BoundariesLayer:  "Boundaries",
		LogLevel:         "info",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "atlas-segment", "config.yaml")
}

func defaultAtlasDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "atlases"
	}
	return filepath.Join(home, ".atlas-segment", "atlases")
}

// LoadConfig reads configPath over the defaults and then applies
// environment overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv applies ATLAS_SEGMENT_* environment variables to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that would break segmentation.
func (c *Config) Validate() error {
	if c.SplinePoints < 2 {
		return fmt.Errorf("splinePoints must be at least 2, got %d", c.SplinePoints)
	}
	if c.BrushSize < 0 {
		return fmt.Errorf("brushSize must not be negative, got %d", c.BrushSize)
	}
	if c.TrackFileExt == "" {
		c.TrackFileExt = ".points"
	}
	if !strings.HasPrefix(c.TrackFileExt, ".") {
		c.TrackFileExt = "." + c.TrackFileExt
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
