// Package config provides configuration loading and management for
// standardtransform. It handles loading dataset definitions and query
// defaults from YAML or TOML files and provides default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML or TOML
type Config struct {
	// Output parameters
	Output struct {
		// Format is the default format for point output ("csv" or "json")
		Format string `yaml:"format" toml:"format"`

		// Precision is the number of decimals written for each value; a
		// negative value writes the shortest exact representation
		Precision int `yaml:"precision" toml:"precision"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`

	// DepthAlong holds defaults for arc length depth queries
	DepthAlong struct {
		// Delta is the lattice spacing in post-transform units
		Delta float64 `yaml:"delta" toml:"delta"`

		// DepthFrom is the depth that reads as zero
		DepthFrom float64 `yaml:"depthFrom" toml:"depthFrom"`
	} `yaml:"depthAlong" toml:"depthAlong"`

	// DefaultDataset is used when no dataset is named on the command line
	DefaultDataset string `yaml:"defaultDataset" toml:"defaultDataset"`

	// Datasets lists the datasets known to the registry
	Datasets []Dataset `yaml:"datasets" toml:"datasets"`
}

// Dataset describes how to orient one imaging dataset
type Dataset struct {
	// Name identifies the dataset in the registry
	Name string `yaml:"name" toml:"name"`

	// PiaPointNm is the pial surface reference point in nanometers
	PiaPointNm []float64 `yaml:"piaPointNm" toml:"piaPointNm"`

	// VoxelResolution is the native voxel size in nanometers
	VoxelResolution []float64 `yaml:"voxelResolution" toml:"voxelResolution"`

	// Orientation rotates nanometer coordinates so depth runs along +y
	Orientation Orientation `yaml:"orientation" toml:"orientation"`

	// Streamline optionally points at a file of streamline samples
	Streamline Streamline `yaml:"streamline" toml:"streamline"`
}

// Orientation is either an Euler rotation or an up vector to align with +y
type Orientation struct {
	// Euler names the rotation axes, e.g. "z" or "xyz"
	Euler string `yaml:"euler,omitempty" toml:"euler,omitempty"`

	// Angles holds one angle per Euler axis
	Angles []float64 `yaml:"angles,omitempty" toml:"angles,omitempty"`

	// Degrees marks Angles as degrees rather than radians
	Degrees bool `yaml:"degrees,omitempty" toml:"degrees,omitempty"`

	// Up is the dataset direction that should become +y
	Up []float64 `yaml:"up,omitempty" toml:"up,omitempty"`
}

// Streamline locates the samples of a dataset's reference curve
type Streamline struct {
	// File is a JSON array of 3-element arrays. Relative paths are resolved
	// against the config file's directory.
	File string `yaml:"file,omitempty" toml:"file,omitempty"`

	// PreTransform marks the samples as dataset coordinates; otherwise
	// they are oriented microns
	PreTransform bool `yaml:"preTransform,omitempty" toml:"preTransform,omitempty"`

	// Resolution is the voxel size of pre-transform samples in nanometers.
	// Empty means the samples are already nanometers.
	Resolution []float64 `yaml:"resolution,omitempty" toml:"resolution,omitempty"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default output parameters
	cfg.Output.Format = "csv"
	cfg.Output.Precision = -1
	cfg.Output.Verbose = false

	// Set default depth-along parameters
	cfg.DepthAlong.Delta = 0.1
	cfg.DepthAlong.DepthFrom = 0

	cfg.DefaultDataset = "minnie65"
	cfg.Datasets = []Dataset{
		{
			Name:            "minnie65",
			PiaPointNm:      []float64{183013 * 4, 83535 * 4, 21480 * 45},
			VoxelResolution: []float64{4, 4, 40},
			Orientation: Orientation{
				Euler:   "z",
				Angles:  []float64{5},
				Degrees: true,
			},
		},
		{
			Name:            "v1dd",
			PiaPointNm:      []float64{101249 * 9, 32249 * 9, 9145 * 45},
			VoxelResolution: []float64{9, 9, 45},
			Orientation: Orientation{
				Up: []float64{-0.00497765, 0.96349375, 0.26768454},
			},
		},
	}

	return cfg
}

// Validate checks that every dataset is fully specified
func (c *Config) Validate() error {
	if c.DepthAlong.Delta <= 0 {
		return fmt.Errorf("depthAlong.delta must be positive, got %g", c.DepthAlong.Delta)
	}

	seen := make(map[string]bool)
	for i, d := range c.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset %d has no name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("dataset %q is defined twice", d.Name)
		}
		seen[d.Name] = true

		if len(d.PiaPointNm) != 3 {
			return fmt.Errorf("dataset %q: piaPointNm must have 3 elements, got %d", d.Name, len(d.PiaPointNm))
		}
		if len(d.VoxelResolution) != 3 {
			return fmt.Errorf("dataset %q: voxelResolution must have 3 elements, got %d", d.Name, len(d.VoxelResolution))
		}
		for _, r := range d.VoxelResolution {
			if r == 0 {
				return fmt.Errorf("dataset %q: voxelResolution must be nonzero", d.Name)
			}
		}

		if r := d.Streamline.Resolution; len(r) != 0 && len(r) != 3 {
			return fmt.Errorf("dataset %q: streamline.resolution must have 3 elements, got %d", d.Name, len(r))
		}

		o := d.Orientation
		switch {
		case o.Euler != "" && len(o.Up) > 0:
			return fmt.Errorf("dataset %q: orientation sets both euler and up", d.Name)
		case len(o.Up) > 0 && len(o.Up) != 3:
			return fmt.Errorf("dataset %q: orientation.up must have 3 elements, got %d", d.Name, len(o.Up))
		case o.Euler == "" && len(o.Up) == 0:
			return fmt.Errorf("dataset %q: orientation needs euler or up", d.Name)
		case o.Euler != "" && len(o.Angles) != len(o.Euler):
			return fmt.Errorf("dataset %q: orientation needs %d angles, got %d", d.Name, len(o.Euler), len(o.Angles))
		}
	}

	if c.DefaultDataset != "" && !seen[c.DefaultDataset] {
		return fmt.Errorf("default dataset %q is not defined", c.DefaultDataset)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by
// extension. If the file doesn't exist, it returns the default
// configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Datasets in the file replace the defaults wholesale
	defaults := cfg.Datasets
	cfg.Datasets = nil

	if isTOML(configPath) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if cfg.Datasets == nil {
		cfg.Datasets = defaults
	}

	// Resolve streamline files relative to the config file
	dir := filepath.Dir(configPath)
	for i := range cfg.Datasets {
		f := cfg.Datasets[i].Streamline.File
		if f != "" && !filepath.IsAbs(f) {
			cfg.Datasets[i].Streamline.File = filepath.Join(dir, f)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
