package githttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/object"
	"github.com/cdk2git/cdk2git/internal/pack"
	"github.com/cdk2git/cdk2git/internal/pktline"
	"github.com/cdk2git/cdk2git/internal/synth"
)

// A Handler serves the git smart-HTTP surface for every project directory
// under the configured project root. It holds no per-clone state: each
// request synthesizes and builds its own object graph.
type Handler struct {
	config      internal.Config
	synthesizer synth.Synthesizer
	logger      *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(config internal.Config, synthesizer synth.Synthesizer, logger *zap.Logger) *Handler {
	return &Handler{
		config:      config,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// ServeHTTP routes the three request shapes a git client issues:
// GET /<project>/info/refs, POST /<project>/git-upload-pack, and
// POST /<project>/git-receive-pack.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/info/refs"):
		h.serveInfoRefs(w, r, strings.TrimSuffix(path, "/info/refs"))
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/git-upload-pack"):
		h.serveUploadPack(w, r, strings.TrimSuffix(path, "/git-upload-pack"))
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/git-receive-pack"):
		h.logger.Info("rejecting push attempt", zap.String("path", r.URL.Path))
		http.Error(w, "push is not supported", http.StatusForbidden)
	default:
		http.NotFound(w, r)
	}
}

// resolveProject maps a request project path onto a directory under the
// project root, refusing anything that would escape it.
func (h *Handler) resolveProject(project string) (string, error) {
	if project == "" {
		return "", fmt.Errorf("empty project path")
	}
	for _, part := range strings.Split(project, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid project path %q", project)
		}
	}
	dir := filepath.Join(h.config.ProjectRoot, filepath.FromSlash(project))
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("project %q not found: %w", project, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project %q is not a directory", project)
	}
	return dir, nil
}

// buildGraph runs the full synthesis and object-build pipeline for one
// request.
func (h *Handler) buildGraph(ctx context.Context, projectDir string) (*object.Graph, error) {
	tree, err := h.synthesizer.Synthesize(ctx, projectDir)
	if err != nil {
		return nil, err
	}
	return object.Build(tree, object.BuildOptions{
		Author: object.Identity{
			Name:  h.config.AuthorName,
			Email: h.config.AuthorEmail,
		},
		Epoch:    h.config.CommitEpoch,
		Timezone: h.config.CommitTimezone,
		Message:  h.config.CommitMessage,
	})
}

// serveInfoRefs handles the refs advertisement half of a clone.
func (h *Handler) serveInfoRefs(w http.ResponseWriter, r *http.Request, project string) {
	logger := h.logger.With(zap.String("project", project), zap.String("request", "info-refs"))

	if service := r.URL.Query().Get("service"); service != uploadPackService {
		logger.Info("unsupported service requested", zap.String("service", service))
		http.Error(w, "service not available", http.StatusBadRequest)
		return
	}

	projectDir, err := h.resolveProject(project)
	if err != nil {
		logger.Info("unknown project", zap.Error(err))
		http.NotFound(w, r)
		return
	}

	graph, err := h.buildGraph(r.Context(), projectDir)
	if err != nil {
		h.serveBuildFailure(w, logger, err)
		return
	}

	// The advertisement is buffered so a failure cannot surface after the
	// success status line has been sent.
	adv := Advertisement{CommitID: graph.CommitID, Branch: h.config.Branch}
	var buf bytes.Buffer
	if err := adv.Encode(&buf); err != nil {
		logger.Error("failed to encode advertisement", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("advertising refs", zap.String("commit", graph.CommitID.String()))
	w.Header().Set("Content-Type", fmt.Sprintf("application/x-%s-advertisement", uploadPackService))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// serveUploadPack handles the pack fetch half of a clone. No pack bytes are
// written before the whole object graph has been built and validated; a
// want for anything but the advertised commit yields a single in-protocol
// ERR pkt-line.
func (h *Handler) serveUploadPack(w http.ResponseWriter, r *http.Request, project string) {
	logger := h.logger.With(zap.String("project", project), zap.String("request", "upload-pack"))

	if ct := r.Header.Get("Content-Type"); ct != fmt.Sprintf("application/x-%s-request", uploadPackService) {
		logger.Info("invalid content type", zap.String("content_type", ct))
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	req, err := parseUploadPackRequest(r.Body)
	if err != nil {
		logger.Info("malformed upload-pack request", zap.Error(err))
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	projectDir, err := h.resolveProject(project)
	if err != nil {
		logger.Info("unknown project", zap.Error(err))
		http.NotFound(w, r)
		return
	}

	graph, err := h.buildGraph(r.Context(), projectDir)
	if err != nil {
		h.serveBuildFailure(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", fmt.Sprintf("application/x-%s-result", uploadPackService))
	w.Header().Set("Cache-Control", "no-cache")
	pw := pktline.NewWriter(w)

	for _, want := range req.Wants {
		if want != graph.CommitID {
			// The handshake has already started, so the mismatch is
			// reported in-protocol rather than as an HTTP status.
			logger.Info("want does not match advertised commit",
				zap.String("want", want.String()),
				zap.String("advertised", graph.CommitID.String()),
			)
			_, _ = pw.WriteString(fmt.Sprintf("ERR not our ref %s", want))
			return
		}
	}

	// Encode the complete pack before emitting anything; a truncated pack
	// must never reach the client.
	packData, err := pack.Encode(graph)
	if err != nil {
		logger.Error("failed to encode pack", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("sending pack",
		zap.String("commit", graph.CommitID.String()),
		zap.Int("objects", 1+len(graph.Trees)+len(graph.Blobs)),
		zap.Int("bytes", len(packData)),
	)

	if _, err := pw.WriteString("NAK\n"); err != nil {
		logger.Info("client went away before pack transfer", zap.Error(err))
		return
	}
	if req.sidebandRequested() {
		sw := pktline.NewSidebandWriter(w, pktline.BandData)
		if _, err := sw.Write(packData); err != nil {
			logger.Info("pack transfer aborted", zap.Error(err))
			return
		}
		_ = sw.Close()
		return
	}
	if _, err := w.Write(packData); err != nil {
		logger.Info("pack transfer aborted", zap.Error(err))
	}
}

// serveBuildFailure maps pipeline failures onto HTTP statuses. Tool stderr
// is logged, never sent to the client.
func (h *Handler) serveBuildFailure(w http.ResponseWriter, logger *zap.Logger, err error) {
	var synthErr *synth.Error
	switch {
	case errors.As(err, &synthErr):
		logger.Error("synthesis failed",
			zap.String("tool", synthErr.Tool),
			zap.Int("exit_code", synthErr.ExitCode),
			zap.String("stderr", synthErr.Stderr),
			zap.Error(err),
		)
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
	case errors.Is(err, object.ErrEmptyTree):
		logger.Error("synthesis produced no files", zap.Error(err))
		http.Error(w, "synthesis produced no files", http.StatusInternalServerError)
	default:
		logger.Error("request pipeline failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
