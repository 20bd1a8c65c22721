package synth_test

import (
	"context"
	"errors"

	containertypes "github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

// mockDockerAPI is a mock implementation of synth.DockerAPI for testing.
type mockDockerAPI struct {
	containerCreateFunc   func(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error)
	containerStartFunc    func(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error)
	containerWaitFunc     func(ctx context.Context, containerID string, options client.ContainerWaitOptions) client.ContainerWaitResult
	containerRemoveFunc   func(ctx context.Context, containerID string, options client.ContainerRemoveOptions) (client.ContainerRemoveResult, error)
	copyToContainerFunc   func(ctx context.Context, containerID string, options client.CopyToContainerOptions) (client.CopyToContainerResult, error)
	copyFromContainerFunc func(ctx context.Context, containerID string, options client.CopyFromContainerOptions) (client.CopyFromContainerResult, error)
	closeFunc             func() error
}

func (m *mockDockerAPI) ContainerCreate(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error) {
	if m.containerCreateFunc != nil {
		return m.containerCreateFunc(ctx, options)
	}
	return client.ContainerCreateResult{}, errors.New("not implemented")
}

func (m *mockDockerAPI) ContainerStart(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error) {
	if m.containerStartFunc != nil {
		return m.containerStartFunc(ctx, containerID, options)
	}
	return client.ContainerStartResult{}, errors.New("not implemented")
}

func (m *mockDockerAPI) ContainerWait(ctx context.Context, containerID string, options client.ContainerWaitOptions) client.ContainerWaitResult {
	if m.containerWaitFunc != nil {
		return m.containerWaitFunc(ctx, containerID, options)
	}
	errCh := make(chan error, 1)
	resCh := make(chan containertypes.WaitResponse, 1)
	errCh <- errors.New("not implemented")
	return client.ContainerWaitResult{Error: errCh, Result: resCh}
}

func (m *mockDockerAPI) ContainerRemove(ctx context.Context, containerID string, options client.ContainerRemoveOptions) (client.ContainerRemoveResult, error) {
	if m.containerRemoveFunc != nil {
		return m.containerRemoveFunc(ctx, containerID, options)
	}
	return client.ContainerRemoveResult{}, nil
}

func (m *mockDockerAPI) CopyToContainer(ctx context.Context, containerID string, options client.CopyToContainerOptions) (client.CopyToContainerResult, error) {
	if m.copyToContainerFunc != nil {
		return m.copyToContainerFunc(ctx, containerID, options)
	}
	return client.CopyToContainerResult{}, errors.New("not implemented")
}

func (m *mockDockerAPI) CopyFromContainer(ctx context.Context, containerID string, options client.CopyFromContainerOptions) (client.CopyFromContainerResult, error) {
	if m.copyFromContainerFunc != nil {
		return m.copyFromContainerFunc(ctx, containerID, options)
	}
	return client.CopyFromContainerResult{}, errors.New("not implemented")
}

func (m *mockDockerAPI) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}
