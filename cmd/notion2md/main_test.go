package main

import (
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRejectsUnknownFormat(t *testing.T) {
	t.Chdir(t.TempDir())

	root := newApp().rootCmd()
	root.SetArgs([]string{"export", "-i", t.TempDir(), "--format", "pdf"})
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notion2md.yaml"), []byte("input: ./from-file\nmax-depth: 3\nmax-nodes: 40\n"), 0o644))

	a := newApp()
	root := a.rootCmd()
	for _, c := range root.Commands() {
		if c.Name() == "validate" {
			c.RunE = func(*cobra.Command, []string) error { return nil }
		}
	}
	root.SetArgs([]string{"validate", "--max-depth", "7"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "./from-file", a.cfg.Input)
	assert.Equal(t, 7, a.cfg.MaxDepth)
	assert.Equal(t, 40, a.cfg.MaxNodes)
}
