package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/recipemap/internal/builder"
	"github.com/vk/recipemap/internal/catalogue"
	"github.com/vk/recipemap/internal/export"
	"github.com/vk/recipemap/internal/graph"
)

func sampleCatalogue() catalogue.Static {
	return catalogue.Static{
		catalogue.Simple("planks", "plank", "log"),
		catalogue.Simple("stick", "stick", "plank"),
		catalogue.Simple("torch", "torch", "stick", "coal"),
	}
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{CataloguePaths: []string{"x"}, LayoutSteps: 10}, ""},
		{"no paths", Config{}, "catalogue path"},
		{"negative steps", Config{CataloguePaths: []string{"x"}, LayoutSteps: -1}, "layout steps"},
		{"negative energy", Config{CataloguePaths: []string{"x"}, LayoutEnergy: -1}, "energy"},
		{"bad format", Config{CataloguePaths: []string{"x"}, ExportFormat: "xml"}, "export format"},
		{"bad port", Config{CataloguePaths: []string{"x"}, HealthcheckPort: 70000}, "port"},
		{"bad log level", Config{CataloguePaths: []string{"x"}, LogLevel: "loud"}, "unknown log level"},
		{"bad log format", Config{CataloguePaths: []string{"x"}, LogFormat: "xml"}, "unknown log format"},
		{"resources without dir", Config{CataloguePaths: []string{"x"}, ExportResources: []string{"plank"}}, "export directory"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_ExportsSettledLayout(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		CataloguePaths: []string{"unused"},
		LayoutSteps:    30,
		ExportDir:      dir,
		ExportFormat:   export.FormatHCL,
		Seed:           42,
	}
	a, logs := SetupAppTest(t, cfg, sampleCatalogue())
	assert.Equal(t, int64(42), a.LayoutConfig().Seed)

	require.NoError(t, a.Run(context.Background()))

	snap := a.Session().Current()
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.NodeCount())

	graphs, err := filepath.Glob(filepath.Join(dir, "recipemap_recipe_graph_*.hcl"))
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	data, err := os.ReadFile(graphs[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "position")

	assert.Contains(t, logs.String(), "Layout settled.")
}

func TestRun_ExportsResourceDetails(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		CataloguePaths:  []string{"unused"},
		LayoutSteps:     5,
		ExportDir:       dir,
		ExportResources: []string{"plank", "unobtainium"},
	}
	a, logs := SetupAppTest(t, cfg, sampleCatalogue())
	require.NoError(t, a.Run(context.Background()))

	details, err := filepath.Glob(filepath.Join(dir, "recipemap_*_details_*.json"))
	require.NoError(t, err)
	assert.Len(t, details, 2)

	plank, err := filepath.Glob(filepath.Join(dir, "recipemap_plank_details_*.json"))
	require.NoError(t, err)
	require.Len(t, plank, 1)
	data, err := os.ReadFile(plank[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "minecraft:planks")

	assert.Contains(t, logs.String(), "Resource is not used by any rule.")
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseLogLevel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger_FormatAndLevel(t *testing.T) {
	buf := &SafeBuffer{}
	logger := newLogger("warning", "JSON", buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestRun_BuildFailure(t *testing.T) {
	cat := catalogue.Func(func(context.Context) ([]catalogue.Rule, error) {
		return nil, errors.New("disk on fire")
	})
	a, _ := SetupAppTest(t, &Config{CataloguePaths: []string{"unused"}}, cat)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, builder.ErrBuildFailed)
	assert.Contains(t, err.Error(), "failed to build recipe graph")
	assert.Nil(t, a.Session().Current())
}

func TestRun_CanceledDuringLayout(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{CataloguePaths: []string{"unused"}, LayoutSteps: 1000}, sampleCatalogue())

	ctx, cancel := context.WithCancel(context.Background())
	a.session.Subscribe(func(*graph.Snapshot) { cancel() })

	err := a.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewApp_PanicsOnBadLayoutConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repulsion: -5\n"), 0o600))

	cfg := &Config{CataloguePaths: []string{"unused"}, LayoutConfigPath: path}
	assert.Panics(t, func() {
		NewAppWithCatalogue(&SafeBuffer{}, cfg, sampleCatalogue())
	})
}

func TestHealthHandler(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{CataloguePaths: []string{"unused"}}, sampleCatalogue())
	mux := a.healthMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := a.Session().Rebuild(context.Background())
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nodes=3")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipemap_")
}
