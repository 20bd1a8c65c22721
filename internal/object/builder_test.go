package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/object"
)

func buildOptions() object.BuildOptions {
	return object.BuildOptions{
		Author:   object.Identity{Name: "CDK2Git", Email: "cdk2git@example.com"},
		Epoch:    1701926400,
		Timezone: "+0000",
		Message:  "Initial commit - CDKTF synthesis output",
	}
}

func TestBuild(t *testing.T) {
	t.Run("two-file tree with a subdirectory", func(t *testing.T) {
		tree := internal.FileTree{
			{Path: "a.tf", Data: []byte("A")},
			{Path: "b/c.tf", Data: []byte("B")},
		}

		graph, err := object.Build(tree, buildOptions())
		require.NoError(t, err)

		// Values computed independently with the canonical git encodings.
		require.Equal(t, "794e25571c51fd1a021bd5afd7e323875bf315c6", graph.CommitID.String())
		require.Equal(t, "de22e1f6036eeb2425bcaa121dafc0fbe8439956", graph.RootTree.String())

		require.Len(t, graph.Trees, 2)
		require.Equal(t, graph.RootTree, graph.Trees[0].ID)
		require.Equal(t, "156355832d5e0561c64ff2c245ba4bb23ebbae3d", graph.Trees[1].ID.String())

		require.Len(t, graph.Blobs, 2)
		require.Equal(t, "8c7e5a667f1b771847fe88c01c3de34413a1b220", graph.Blobs[0].ID.String())
		require.Equal(t, "7371f47a6f8bd23a8fa1a8b2a9479cdd76380e54", graph.Blobs[1].ID.String())

		// Root tree lists a.tf before b.
		rootData := string(graph.Trees[0].Data)
		require.Contains(t, rootData, "100644 a.tf\x00")
		require.Contains(t, rootData, "40000 b\x00")
	})

	t.Run("is deterministic across invocations", func(t *testing.T) {
		tree := internal.FileTree{
			{Path: "main.tf", Data: []byte("hello\n")},
			{Path: "modules/net/vpc.tf", Data: []byte("vpc")},
		}
		first, err := object.Build(tree, buildOptions())
		require.NoError(t, err)
		second, err := object.Build(tree, buildOptions())
		require.NoError(t, err)
		require.Equal(t, first.CommitID, second.CommitID)
		require.Equal(t, first.Objects(), second.Objects())
	})

	t.Run("is independent of file discovery order", func(t *testing.T) {
		forward := internal.FileTree{
			{Path: "a.tf", Data: []byte("A")},
			{Path: "b/c.tf", Data: []byte("B")},
		}
		reversed := internal.FileTree{
			{Path: "b/c.tf", Data: []byte("B")},
			{Path: "a.tf", Data: []byte("A")},
		}
		g1, err := object.Build(forward, buildOptions())
		require.NoError(t, err)
		g2, err := object.Build(reversed, buildOptions())
		require.NoError(t, err)
		require.Equal(t, g1.CommitID, g2.CommitID)
	})

	t.Run("commit id depends on the logical timestamp", func(t *testing.T) {
		tree := internal.FileTree{{Path: "main.tf", Data: []byte("x")}}
		opts := buildOptions()
		g1, err := object.Build(tree, opts)
		require.NoError(t, err)
		opts.Epoch++
		g2, err := object.Build(tree, opts)
		require.NoError(t, err)
		require.NotEqual(t, g1.CommitID, g2.CommitID)
		require.Equal(t, g1.RootTree, g2.RootTree)
	})

	t.Run("identical file content yields one blob", func(t *testing.T) {
		tree := internal.FileTree{
			{Path: "one.tf", Data: []byte("same")},
			{Path: "two.tf", Data: []byte("same")},
		}
		graph, err := object.Build(tree, buildOptions())
		require.NoError(t, err)
		require.Len(t, graph.Blobs, 1)

		// Both tree entries still reference the shared blob.
		require.Len(t, graph.Trees, 1)
	})

	t.Run("objects are ordered commit, trees, blobs", func(t *testing.T) {
		tree := internal.FileTree{
			{Path: "a.tf", Data: []byte("A")},
			{Path: "b/c.tf", Data: []byte("B")},
			{Path: "b/d/e.tf", Data: []byte("E")},
		}
		graph, err := object.Build(tree, buildOptions())
		require.NoError(t, err)

		objects := graph.Objects()
		require.Equal(t, object.TypeCommit, objects[0].Type)
		types := make(map[object.Type]int)
		lastTree, firstBlob := 0, len(objects)
		for i, obj := range objects[1:] {
			types[obj.Type]++
			if obj.Type == object.TypeTree && i+1 > lastTree {
				lastTree = i + 1
			}
			if obj.Type == object.TypeBlob && i+1 < firstBlob {
				firstBlob = i + 1
			}
		}
		require.Equal(t, 3, types[object.TypeTree])
		require.Equal(t, 3, types[object.TypeBlob])
		require.Less(t, lastTree, firstBlob)

		// Depth-first from the root: root, b, b/d.
		require.Equal(t, graph.RootTree, objects[1].ID)
	})

	t.Run("executable files use mode 100755", func(t *testing.T) {
		tree := internal.FileTree{
			{Path: "run.sh", Data: []byte("#!/bin/sh\n"), Executable: true},
		}
		graph, err := object.Build(tree, buildOptions())
		require.NoError(t, err)
		require.Contains(t, string(graph.Trees[0].Data), "100755 run.sh\x00")
	})

	t.Run("failure cases", func(t *testing.T) {
		t.Run("empty tree", func(t *testing.T) {
			_, err := object.Build(internal.FileTree{}, buildOptions())
			require.ErrorIs(t, err, object.ErrEmptyTree)
		})

		t.Run("path escaping the root", func(t *testing.T) {
			tree := internal.FileTree{{Path: "../escape.tf", Data: []byte("x")}}
			_, err := object.Build(tree, buildOptions())
			require.ErrorContains(t, err, "invalid file path")
		})

		t.Run("path that is both file and directory", func(t *testing.T) {
			tree := internal.FileTree{
				{Path: "a", Data: []byte("x")},
				{Path: "a/b.tf", Data: []byte("y")},
			}
			_, err := object.Build(tree, buildOptions())
			require.ErrorContains(t, err, "a file as a directory")
		})
	})
}
