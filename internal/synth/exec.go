package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cdk2git/cdk2git/internal"
)

// ExecRunner runs the synthesis tool directly on the host. The tool is
// executed in the project directory with {output} in its arguments replaced
// by a per-call scoped workspace directory, which is always released before
// Synthesize returns.
type ExecRunner struct {
	// Command is the tool invocation, e.g.
	// ["cdktf", "synth", "--output", "{output}"].
	Command []string

	// Timeout bounds one run. Zero means no additional deadline beyond the
	// caller's context.
	Timeout time.Duration
}

// NewExecRunner builds an ExecRunner from configuration.
func NewExecRunner(config internal.SynthConfig) (*ExecRunner, error) {
	if len(config.Command) == 0 {
		return nil, fmt.Errorf("synthesis command must not be empty")
	}
	return &ExecRunner{
		Command: config.Command,
		Timeout: config.Timeout(),
	}, nil
}

// Synthesize runs the tool against projectPath and returns the file tree it
// wrote to the output directory. Tool failures carry the exit code and
// captured stderr in a *Error.
func (r *ExecRunner) Synthesize(ctx context.Context, projectPath string) (_ internal.FileTree, err error) {
	if _, err := os.Stat(projectPath); err != nil {
		return nil, &Error{Tool: r.Command[0], Err: fmt.Errorf("project path is not accessible: %w", err)}
	}

	session := internal.GenerateSession()
	workspace, err := internal.AcquireWorkspace(session)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, workspace.Release())
	}()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	output := filepath.Join(workspace.Path(), "out")
	if err := os.Mkdir(output, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	args := expandPlaceholders(r.Command, output)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = projectPath
	cmd.Stderr = &stderr
	// The tool runs in its own process group and cancellation kills the
	// whole group: cdktf spawns node and terraform children that inherit
	// the stderr pipe and would keep Wait blocked past the deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &Error{
				Tool:     args[0],
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
				Err:      err,
			}
		}
		return nil, &Error{Tool: args[0], Stderr: stderr.String(), Err: err}
	}

	tree, err := CollectTree(output)
	if err != nil {
		return nil, &Error{Tool: args[0], Err: err}
	}
	return tree, nil
}
