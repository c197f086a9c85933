package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/recipemap/internal/builder"
	"github.com/vk/recipemap/internal/catalogue"
	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/export"
	"github.com/vk/recipemap/internal/layout"
	"github.com/vk/recipemap/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	catalogue  catalogue.Catalogue
	session    *session.Manager
	layout     layout.Config
	exporter   *export.Exporter
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Invalid layout or
// export settings are fatal startup errors and cause a panic.
func NewApp(outW io.Writer, cfg *Config) *App {
	return NewAppWithCatalogue(outW, cfg, catalogue.NewFiles(cfg.CataloguePaths...))
}

// NewAppWithCatalogue is like NewApp but reads rules from cat.
func NewAppWithCatalogue(outW io.Writer, cfg *Config, cat catalogue.Catalogue) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	layoutCfg := layout.DefaultConfig()
	if cfg.LayoutConfigPath != "" {
		var err error
		layoutCfg, err = layout.LoadConfig(cfg.LayoutConfigPath)
		if err != nil {
			panic(fmt.Errorf("failed to load layout configuration: %w", err))
		}
		logger.Debug("Layout configuration loaded.", "path", cfg.LayoutConfigPath)
	}
	if cfg.Seed != 0 {
		layoutCfg.Seed = cfg.Seed
	}
	if err := layoutCfg.Validate(); err != nil {
		panic(fmt.Errorf("invalid layout configuration: %w", err))
	}

	var exporter *export.Exporter
	if cfg.ExportDir != "" {
		var err error
		exporter, err = export.NewExporter(cfg.ExportDir, "recipemap", cfg.ExportFormat, cfg.ExportKeep)
		if err != nil {
			panic(fmt.Errorf("invalid export configuration: %w", err))
		}
	}

	return &App{
		outW:      outW,
		logger:    logger,
		ctx:       ctx,
		config:    cfg,
		catalogue: cat,
		session:   session.New(builder.New(cat)),
		layout:    layoutCfg,
		exporter:  exporter,
	}
}

// Session returns the application's build session. This is primarily for testing.
func (a *App) Session() *session.Manager {
	return a.session
}

// LayoutConfig returns the effective layout configuration.
func (a *App) LayoutConfig() layout.Config {
	return a.layout
}
