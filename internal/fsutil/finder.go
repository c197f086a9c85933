// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	return FindFilesByExtensions(rootPath, extension)
}

// FindFilesByExtensions is like FindFilesByExtension but accepts several
// extensions. A root that is itself a matching file is returned as is. The
// result is sorted.
func FindFilesByExtensions(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}
	for _, ext := range extensions {
		if ext == "" {
			panic("extension must not be empty")
		}
	}

	matches := func(name string) bool {
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		if matches(info.Name()) {
			return []string{rootPath}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && matches(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}
