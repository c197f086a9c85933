package app

import (
	"errors"
	"fmt"

	"github.com/vk/recipemap/internal/export"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CataloguePaths []string // .hcl / .yaml rule files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	LayoutConfigPath string
	LayoutSteps      int
	LayoutEnergy     float64
	Seed             int64 // Overrides the layout config seed when non-zero.

	ExportDir       string
	ExportFormat    string
	ExportKeep      int
	ExportResources []string // Resources that also get a detail document.

	FeedURL       string
	FeedNamespace string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.CataloguePaths) == 0 {
		return nil, errors.New("at least one catalogue path is required")
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := validateLogFormat(cfg.LogFormat); err != nil {
		return nil, err
	}
	if cfg.LayoutSteps < 0 {
		return nil, fmt.Errorf("layout steps must not be negative, got %d", cfg.LayoutSteps)
	}
	if cfg.LayoutEnergy < 0 {
		return nil, fmt.Errorf("layout energy threshold must not be negative, got %v", cfg.LayoutEnergy)
	}
	switch cfg.ExportFormat {
	case "", export.FormatJSON, export.FormatHCL:
	default:
		return nil, fmt.Errorf("invalid export format %q: must be %q or %q", cfg.ExportFormat, export.FormatJSON, export.FormatHCL)
	}
	if cfg.ExportKeep < 0 {
		return nil, fmt.Errorf("export retention must not be negative, got %d", cfg.ExportKeep)
	}
	if len(cfg.ExportResources) > 0 && cfg.ExportDir == "" {
		return nil, errors.New("resource detail export requires an export directory")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
