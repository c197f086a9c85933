package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/recipemap/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("recipemap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
RecipeMap - builds and lays out the relationship graph of a recipe catalogue.

Usage:
  recipemap [options] [CATALOGUE_PATH...]

Arguments:
  CATALOGUE_PATH
    Path to a .hcl/.yaml rule file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	catalogueFlag := flagSet.String("catalogue", "", "Path to the catalogue file or directory.")
	cFlag := flagSet.String("c", "", "Path to the catalogue file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn' (or 'warning'), 'error'.")
	layoutConfigFlag := flagSet.String("layout-config", "", "Path to a YAML file with layout force constants.")
	layoutStepsFlag := flagSet.Int("layout-steps", 500, "Maximum number of layout simulation steps.")
	layoutEnergyFlag := flagSet.Float64("layout-energy", 0.01, "Stop the layout once kinetic energy falls below this value.")
	seedFlag := flagSet.Int64("seed", 0, "Seed for initial node placement. 0 keeps the layout config seed.")
	exportDirFlag := flagSet.String("export-dir", "", "Directory to write graph exports to. Empty disables export.")
	exportFormatFlag := flagSet.String("export-format", "json", "Export document format. Options: 'json' or 'hcl'.")
	exportKeepFlag := flagSet.Int("export-keep", 10, "Number of exports to retain. 0 keeps all.")
	var exportResources []string
	flagSet.Func("export-resource", "Also export a detail document for this resource. May be repeated or comma-separated.", func(v string) error {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				exportResources = append(exportResources, r)
			}
		}
		return nil
	})
	feedURLFlag := flagSet.String("feed-url", "", "Socket.IO server to stream the graph and layout to.")
	feedNamespaceFlag := flagSet.String("feed-namespace", "/", "Socket.IO namespace for the feed.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	if *catalogueFlag != "" {
		paths = append(paths, *catalogueFlag)
	}
	if *cFlag != "" {
		paths = append(paths, *cFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Catalogue paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No catalogue path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		CataloguePaths:   paths,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		HealthcheckPort:  *healthPortFlag,
		LayoutConfigPath: *layoutConfigFlag,
		LayoutSteps:      *layoutStepsFlag,
		LayoutEnergy:     *layoutEnergyFlag,
		Seed:             *seedFlag,
		ExportDir:        *exportDirFlag,
		ExportFormat:     strings.ToLower(*exportFormatFlag),
		ExportKeep:       *exportKeepFlag,
		ExportResources:  exportResources,
		FeedURL:          *feedURLFlag,
		FeedNamespace:    *feedNamespaceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
