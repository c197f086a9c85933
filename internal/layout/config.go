package layout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable force constants of the simulator.
type Config struct {
	Repulsion         float64 `yaml:"repulsion"`
	Attraction        float64 `yaml:"attraction"`
	Damping           float64 `yaml:"damping"`
	MinDistance       float64 `yaml:"min_distance"`
	ReferenceDistance float64 `yaml:"reference_distance"`
	MaxSpeed          float64 `yaml:"max_speed"`
	// InitialExtent bounds the uniform initial placement to
	// [-InitialExtent, InitialExtent] on both axes.
	InitialExtent float64 `yaml:"initial_extent"`
	Seed          int64   `yaml:"seed"`
}

// DefaultConfig returns the stock force constants.
func DefaultConfig() Config {
	return Config{
		Repulsion:         8000,
		Attraction:        0.05,
		Damping:           0.85,
		MinDistance:       50,
		ReferenceDistance: 50,
		MaxSpeed:          10,
		InitialExtent:     500,
		Seed:              1,
	}
}

// Validate checks that every constant is usable.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("repulsion", c.Repulsion)
	positive("attraction", c.Attraction)
	positive("min_distance", c.MinDistance)
	positive("reference_distance", c.ReferenceDistance)
	positive("max_speed", c.MaxSpeed)
	positive("initial_extent", c.InitialExtent)
	if !(c.Damping > 0 && c.Damping < 1) {
		errs = append(errs, fmt.Errorf("damping must be in (0,1), got %v", c.Damping))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read layout config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode layout config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid layout config %s: %w", path, err)
	}
	return cfg, nil
}
