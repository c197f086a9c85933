package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	layoutPath := filepath.Join(tempDir, "layout.yaml")
	require.NoError(t, os.WriteFile(layoutPath, []byte("damping: 3\n"), 0600))
	rulesPath := filepath.Join(tempDir, "rules.hcl")
	require.NoError(t, os.WriteFile(rulesPath, []byte(""), 0600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-layout-config", layoutPath, rulesPath})

	require.Error(t, err, "run() should have returned an error after recovering from a panic")
	require.Contains(t, err.Error(), "application startup panicked")
	require.Contains(t, err.Error(), "damping")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BuildsCatalogue(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rules := `
rule "planks" {
  inputs = ["log"]
  output {
    resource = "plank"
    count    = 4
  }
}

rule "stick" {
  inputs = ["plank", "plank"]
  output {
    resource = "stick"
    count    = 4
  }
}
`
	rulesPath := filepath.Join(tempDir, "rules.hcl")
	require.NoError(t, os.WriteFile(rulesPath, []byte(rules), 0600))
	exportDir := filepath.Join(tempDir, "out")

	out := &bytes.Buffer{}
	err := run(out, []string{"-layout-steps", "20", "-export-dir", exportDir, rulesPath})
	require.NoError(t, err, out.String())

	graphs, err := filepath.Glob(filepath.Join(exportDir, "recipemap_recipe_graph_*.json"))
	require.NoError(t, err)
	require.Len(t, graphs, 1)
}
