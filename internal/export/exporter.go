package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/layout"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

const timestampLayout = "2006-01-02_15-04-05.000"

// Exporter writes export files into a directory.
type Exporter struct {
	Dir    string
	Prefix string
	Format string
	// Keep is how many files per prefix survive cleanup. Zero disables cleanup.
	Keep int

	now func() time.Time
}

// NewExporter creates an exporter. An empty format means JSON.
func NewExporter(dir, prefix, format string, keep int) (*Exporter, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatHCL {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if keep < 0 {
		return nil, fmt.Errorf("export retention must not be negative, got %d", keep)
	}
	return &Exporter{Dir: dir, Prefix: prefix, Format: format, Keep: keep, now: time.Now}, nil
}

// Export writes the graph document and the statistics report for snap and
// returns their paths. positions may be nil.
func (x *Exporter) Export(ctx context.Context, snap *graph.Snapshot, positions map[ruleid.ID]layout.Point) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	now := x.now()
	stamp := now.Format(timestampLayout)

	doc := NewDocument(snap, now, positions)
	var body bytes.Buffer
	var err error
	if x.Format == FormatHCL {
		err = WriteHCL(&body, doc)
	} else {
		err = WriteJSON(&body, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render graph document: %w", err)
	}
	graphPath, err := x.write(fmt.Sprintf("%s_recipe_graph_%s.%s", x.Prefix, stamp, x.Format), body.Bytes())
	if err != nil {
		return nil, err
	}

	var stats bytes.Buffer
	if err := WriteStatistics(&stats, snap); err != nil {
		return nil, fmt.Errorf("failed to render statistics: %w", err)
	}
	statsPath, err := x.write(fmt.Sprintf("%s_statistics_%s.txt", x.Prefix, stamp), stats.Bytes())
	if err != nil {
		return nil, err
	}
	logger.Info("Exported graph.", "document", graphPath, "statistics", statsPath)

	if x.Keep > 0 {
		removed, err := Cleanup(x.Dir, x.Prefix+"_recipe_graph_", x.Keep)
		if err != nil {
			logger.Warn("Failed to clean up old exports.", "error", err)
		}
		more, err := Cleanup(x.Dir, x.Prefix+"_statistics_", x.Keep)
		if err != nil {
			logger.Warn("Failed to clean up old exports.", "error", err)
		}
		if removed+more > 0 {
			logger.Debug("Removed old exports.", "count", removed+more)
		}
	}
	return []string{graphPath, statsPath}, nil
}

// ExportResource writes the detail document of resource r and returns its path.
func (x *Exporter) ExportResource(ctx context.Context, snap *graph.Snapshot, r node.Resource) (string, error) {
	now := x.now()
	var body bytes.Buffer
	if err := WriteJSON(&body, NewResourceDetails(snap, r, now)); err != nil {
		return "", fmt.Errorf("failed to render resource details: %w", err)
	}
	name := fmt.Sprintf("%s_%s_details_%s.json", x.Prefix, sanitize(string(r)), now.Format(timestampLayout))
	path, err := x.write(name, body.Bytes())
	if err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Info("Exported resource details.", "resource", r, "path", path)
	return path, nil
}

func (x *Exporter) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(x.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\':
			return '_'
		}
		return r
	}, s)
}

// Cleanup deletes regular files in dir whose name starts with prefix, keeping
// the keep most recently modified ones. It returns how many were removed. A
// missing directory is not an error.
func Cleanup(dir, prefix string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	type file struct {
		path    string
		modTime time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}

	slices.SortFunc(files, func(a, b file) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return strings.Compare(b.path, a.path)
	})

	removed := 0
	var errs []error
	for _, f := range files[min(keep, len(files)):] {
		if err := os.Remove(f.path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("failed to remove %d old exports: %w", len(errs), errs[0])
	}
	return removed, nil
}
