package synth

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cdk2git/cdk2git/internal"
)

// A Synthesizer turns a project directory into the file tree the synthesis
// tool produces for it, or fails with a *Error.
type Synthesizer interface {
	Synthesize(ctx context.Context, projectPath string) (internal.FileTree, error)
}

// Error is a failed synthesis run. Stderr is kept for logging and is never
// forwarded to git clients.
type Error struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis with %s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("synthesis with %s failed with exit code %d", e.Tool, e.ExitCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CollectTree reads every regular file under dir into a FileTree, paths
// slash-separated and relative to dir, content byte-exact. Symbolic links
// are rejected: the synthesis contract does not carry link metadata.
func CollectTree(dir string) (internal.FileTree, error) {
	var tree internal.FileTree
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return fmt.Errorf("synthesis output contains symbolic link %q, which is not supported", path)
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("synthesis output contains non-regular file %q", path)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		tree = append(tree, internal.File{
			Path:       filepath.ToSlash(rel),
			Data:       data,
			Executable: info.Mode()&0o111 != 0,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// expandPlaceholders substitutes {output} in each argument.
func expandPlaceholders(args []string, output string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, "{output}", output)
	}
	return out
}
