package synth

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"

	"github.com/cdk2git/cdk2git/internal"
)

// containerProjectDir is where the project is staged inside the synthesis
// container.
const containerProjectDir = "/project"

// DockerRunner runs the synthesis tool inside a pinned Docker image: the
// project directory is copied in as a tar stream, the container runs to
// completion, and the output directory is copied back out. The image tag
// is the tool version pin. The container is force-removed on every exit
// path.
type DockerRunner struct {
	api       DockerAPI
	image     string
	command   []string
	outputDir string
	timeout   time.Duration
}

// NewDockerRunner builds a DockerRunner on the given Docker API client.
func NewDockerRunner(api DockerAPI, config internal.SynthConfig) (*DockerRunner, error) {
	if config.Image == "" {
		return nil, fmt.Errorf("synthesis image must not be empty")
	}
	if config.OutputDir == "" {
		return nil, fmt.Errorf("synthesis output directory must not be empty")
	}
	return &DockerRunner{
		api:       api,
		image:     config.Image,
		command:   config.Command,
		outputDir: config.OutputDir,
		timeout:   config.Timeout(),
	}, nil
}

// NewDefaultDockerRunner builds a DockerRunner with a real Docker client
// from the environment.
func NewDefaultDockerRunner(config internal.SynthConfig) (*DockerRunner, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}
	return NewDockerRunner(cli, config)
}

// Close closes the underlying Docker client connection.
func (r *DockerRunner) Close() error {
	return r.api.Close()
}

// Synthesize runs the pinned image against projectPath and returns the file
// tree the tool wrote to the configured output directory.
func (r *DockerRunner) Synthesize(ctx context.Context, projectPath string) (internal.FileTree, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	session := internal.GenerateSession()
	created, err := r.api.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:      r.image,
			Cmd:        r.command,
			WorkingDir: containerProjectDir,
		},
		Name: string(session.ID()),
	})
	if err != nil {
		return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to create synthesis container: %w\nEnsure the image %q is available", err, r.image)}
	}
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = r.api.ContainerRemove(removeCtx, created.ID, client.ContainerRemoveOptions{Force: true})
	}()

	archive, err := tarDirectory(projectPath, strings.TrimPrefix(containerProjectDir, "/"))
	if err != nil {
		return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to archive project directory: %w", err)}
	}
	if _, err := r.api.CopyToContainer(ctx, created.ID, client.CopyToContainerOptions{
		DestinationPath: "/",
		Content:         archive,
	}); err != nil {
		return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to copy project into container: %w", err)}
	}

	if _, err := r.api.ContainerStart(ctx, created.ID, client.ContainerStartOptions{}); err != nil {
		return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to start synthesis container: %w", err)}
	}

	wait := r.api.ContainerWait(ctx, created.ID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	select {
	case err := <-wait.Error:
		if err != nil {
			return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to wait for synthesis container: %w", err)}
		}
	case status := <-wait.Result:
		if status.StatusCode != 0 {
			return nil, &Error{Tool: r.image, ExitCode: int(status.StatusCode)}
		}
	case <-ctx.Done():
		return nil, &Error{Tool: r.image, Err: ctx.Err()}
	}

	result, err := r.api.CopyFromContainer(ctx, created.ID, client.CopyFromContainerOptions{
		SourcePath: containerProjectDir + "/" + r.outputDir,
	})
	if err != nil {
		return nil, &Error{Tool: r.image, Err: fmt.Errorf("failed to copy synthesis output out of container: %w", err)}
	}
	defer result.Content.Close()

	tree, err := treeFromTar(result.Content)
	if err != nil {
		return nil, &Error{Tool: r.image, Err: err}
	}
	return tree, nil
}

// tarDirectory archives dir as a tar stream rooted at prefix, preserving
// executable bits and rejecting symbolic links.
func tarDirectory(dir, prefix string) (io.Reader, error) {
	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(filepath.Join(prefix, rel))
			if d.IsDir() {
				return tw.WriteHeader(&tar.Header{
					Typeflag: tar.TypeDir,
					Name:     name + "/",
					Mode:     0o755,
				})
			}
			if !d.Type().IsRegular() {
				return fmt.Errorf("project contains non-regular file %q", path)
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			header := &tar.Header{
				Typeflag: tar.TypeReg,
				Name:     name,
				Mode:     int64(info.Mode().Perm()),
				Size:     int64(len(data)),
			}
			if err := tw.WriteHeader(header); err != nil {
				return err
			}
			_, err = tw.Write(data)
			return err
		})
		if err == nil {
			err = tw.Close()
		} else {
			_ = tw.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// treeFromTar converts a docker copy-out tar stream into a FileTree. The
// stream is rooted at the copied directory's basename, which is stripped.
func treeFromTar(r io.Reader) (internal.FileTree, error) {
	var tree internal.FileTree
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return tree, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read synthesis output archive: %w", err)
		}

		name := strings.TrimSuffix(header.Name, "/")
		_, rel, found := strings.Cut(name, "/")
		switch header.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeReg:
			if !found || rel == "" {
				return nil, fmt.Errorf("unexpected top-level file %q in synthesis output archive", header.Name)
			}
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("failed to read %q from synthesis output archive: %w", header.Name, err)
			}
			tree = append(tree, internal.File{
				Path:       rel,
				Data:       data,
				Executable: header.FileInfo().Mode()&0o111 != 0,
			})
		case tar.TypeSymlink, tar.TypeLink:
			return nil, fmt.Errorf("synthesis output contains link %q, which is not supported", header.Name)
		default:
			continue
		}
	}
}
