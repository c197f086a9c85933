package catalogue

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/fsutil"
)

// Files is a catalogue backed by rule files. Each path may be a file or a
// directory searched recursively for .hcl, .yaml and .yml files.
type Files struct {
	Paths []string
}

// NewFiles creates a file-backed catalogue.
func NewFiles(paths ...string) *Files {
	return &Files{Paths: paths}
}

// Rules loads every discovered file in path order. When a file cannot be read
// or parsed, the rules loaded from earlier files are returned along with the
// error.
func (f *Files) Rules(ctx context.Context) ([]Rule, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Catalogue loading started.", "path_count", len(f.Paths))

	files, err := f.discover()
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered catalogue files.", "count", len(files))

	parser := hclparse.NewParser()
	var rules []Rule
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return rules, err
		}

		var loaded []Rule
		switch filepath.Ext(file) {
		case ".hcl":
			loaded, err = loadHCLFile(parser, file)
		default:
			loaded, err = loadYAMLFile(file)
		}
		if err != nil {
			return rules, err
		}
		logger.Debug("Loaded catalogue file.", "file", file, "rules", len(loaded))
		rules = append(rules, loaded...)
	}

	logger.Debug("Catalogue loading complete.", "rules", len(rules))
	return rules, nil
}

func (f *Files) discover() ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, path := range f.Paths {
		found, err := fsutil.FindFilesByExtensions(path, ".hcl", ".yaml", ".yml")
		if err != nil {
			return nil, fmt.Errorf("failed to discover catalogue files: %w", err)
		}
		for _, p := range found {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}
	return all, nil
}
