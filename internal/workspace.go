package internal

import (
	"fmt"
	"os"
)

// A Workspace is a scoped temporary directory owned by exactly one request.
// It is acquired at request entry and must be released on every exit path;
// nothing outside the owning request may observe its content.
type Workspace struct {
	path string
}

// AcquireWorkspace creates a fresh temporary directory for the session.
func AcquireWorkspace(session Session) (Workspace, error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("%s-", session.ID()))
	if err != nil {
		return Workspace{}, fmt.Errorf("failed to create temporary workspace: %w\nCheck free space and permissions on the temp directory", err)
	}
	return Workspace{path: dir}, nil
}

// Path returns the workspace directory.
func (w Workspace) Path() string {
	return w.path
}

// Release removes the workspace and everything in it. Releasing a zero
// Workspace is a no-op.
func (w Workspace) Release() error {
	if w.path == "" {
		return nil
	}
	if err := os.RemoveAll(w.path); err != nil {
		return fmt.Errorf("failed to remove workspace %q: %w", w.path, err)
	}
	return nil
}
