package synth

import (
	"context"

	"github.com/moby/moby/client"
)

// DockerAPI is the subset of the Docker client used by DockerRunner. It
// allows dependency injection and testing with mocks.
//
// The real Docker client (*client.Client from moby/moby/client) implements
// this interface.
//
// Usage:
//
//	// Production code: use the real Docker client
//	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//	    return err
//	}
//	runner := synth.NewDockerRunner(cli, config)
//
//	// Test code: inject a mock
//	type mockDockerAPI struct{}
//	func (m *mockDockerAPI) ContainerCreate(...) { /* mock implementation */ }
//	// ... implement other methods ...
//	runner := synth.NewDockerRunner(&mockDockerAPI{}, config)
type DockerAPI interface {
	ContainerCreate(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error)
	ContainerStart(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error)
	ContainerWait(ctx context.Context, containerID string, options client.ContainerWaitOptions) client.ContainerWaitResult
	ContainerRemove(ctx context.Context, containerID string, options client.ContainerRemoveOptions) (client.ContainerRemoveResult, error)
	CopyToContainer(ctx context.Context, containerID string, options client.CopyToContainerOptions) (client.CopyToContainerResult, error)
	CopyFromContainer(ctx context.Context, containerID string, options client.CopyFromContainerOptions) (client.CopyFromContainerResult, error)
	Close() error
}
