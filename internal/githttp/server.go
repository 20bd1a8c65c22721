package githttp

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/synth"
)

type Server struct {
	server   *http.Server
	listener net.Listener
	port     int
	logger   *zap.Logger
}

// NewServer creates and starts the git HTTP server on the configured listen
// address (":0" picks a free port, which tests rely on). Requests are
// served concurrently, each owning its own synthesis workspace. The server
// starts immediately in a background goroutine; call Close to stop it.
func NewServer(config internal.Config, synthesizer synth.Synthesizer, logger *zap.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", config.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w\nAnother process may be using the port", config.ListenAddr, err)
	}

	_, portString, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to split listener host/port: %w", err)
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to parse listener port: %w", err)
	}

	server := &http.Server{
		Handler: NewHandler(config, synthesizer, logger),
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("git server error", zap.Error(err))
		}
	}()

	return &Server{
		server:   server,
		listener: listener,
		port:     port,
		logger:   logger,
	}, nil
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Close stops the HTTP server and closes the listener.
func (s *Server) Close() error {
	return s.server.Close()
}
