package githttp_test

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/githttp"
)

func TestServer(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "alpha"), 0o755))

	config := internal.DefaultConfig()
	config.ListenAddr = ":0"
	config.ProjectRoot = root

	synthesizer := &fakeSynthesizer{trees: map[string]internal.FileTree{"alpha": scenarioTree()}}

	server, err := githttp.NewServer(config, synthesizer, zap.NewNop())
	require.NoError(t, err)
	defer server.Close()

	require.Greater(t, server.Port(), 0)

	resp, err := http.Get(fmt.Sprintf(
		"http://127.0.0.1:%d/alpha/info/refs?service=git-upload-pack", server.Port(),
	))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), scenarioCommit+" refs/heads/main\n")

	require.NoError(t, server.Close())
}

func TestServerListenFailure(t *testing.T) {
	config := internal.DefaultConfig()
	config.ListenAddr = "256.256.256.256:70000"

	_, err := githttp.NewServer(config, &fakeSynthesizer{}, zap.NewNop())
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to listen")
}
