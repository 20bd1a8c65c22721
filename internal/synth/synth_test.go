package synth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdk2git/cdk2git/internal/synth"
)

func TestCollectTree(t *testing.T) {
	t.Run("reads files with slash-separated relative paths", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules", "net"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte("top"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", "net", "vpc.tf"), []byte("vpc"), 0o644))

		tree, err := synth.CollectTree(dir)
		require.NoError(t, err)
		require.Len(t, tree, 2)

		byPath := make(map[string]string)
		for _, f := range tree {
			byPath[f.Path] = string(f.Data)
		}
		require.Equal(t, "top", byPath["main.tf"])
		require.Equal(t, "vpc", byPath["modules/net/vpc.tf"])
	})

	t.Run("keeps content byte-exact", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte("crlf\r\nnul\x00tail")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.bin"), content, 0o644))

		tree, err := synth.CollectTree(dir)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		require.Equal(t, content, tree[0].Data)
	})

	t.Run("marks executable files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.tf"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hook.sh"), []byte("#!/bin/sh"), 0o755))

		tree, err := synth.CollectTree(dir)
		require.NoError(t, err)
		executables := make(map[string]bool)
		for _, f := range tree {
			executables[f.Path] = f.Executable
		}
		require.False(t, executables["plain.tf"])
		require.True(t, executables["hook.sh"])
	})

	t.Run("returns an empty tree for an empty directory", func(t *testing.T) {
		tree, err := synth.CollectTree(t.TempDir())
		require.NoError(t, err)
		require.Empty(t, tree)
	})

	t.Run("rejects symbolic links", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tf"), []byte("x"), 0o644))
		require.NoError(t, os.Symlink("a.tf", filepath.Join(dir, "link.tf")))

		_, err := synth.CollectTree(dir)
		require.ErrorContains(t, err, "symbolic link")
	})
}
