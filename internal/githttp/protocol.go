package githttp

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cdk2git/cdk2git/internal/object"
	"github.com/cdk2git/cdk2git/internal/pktline"
)

// errProtocol marks client errors detected before any streaming begins;
// they surface as HTTP 400.
var errProtocol = errors.New("protocol error")

// An uploadPackRequest is the parsed body of a pack fetch: the wanted
// object ids and the capabilities the client selected on its first want
// line.
type uploadPackRequest struct {
	Wants        []object.ID
	Capabilities []string
}

// sidebandRequested reports whether the client negotiated side-band
// framing for the pack stream.
func (r *uploadPackRequest) sidebandRequested() bool {
	for _, c := range r.Capabilities {
		if c == "side-band-64k" || c == "side-band" {
			return true
		}
	}
	return false
}

// parseUploadPackRequest reads want pkt-lines up to the first flush packet.
// Anything after the flush ("done", "have" lines) plays no role in this
// server's single-commit negotiation and is ignored.
func parseUploadPackRequest(r io.Reader) (*uploadPackRequest, error) {
	pr := pktline.NewReader(r)
	req := &uploadPackRequest{}
	for {
		payload, flush, err := pr.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errProtocol, err)
		}
		if flush {
			break
		}

		line := strings.TrimSuffix(string(payload), "\n")
		rest, ok := strings.CutPrefix(line, "want ")
		if !ok {
			return nil, fmt.Errorf("%w: unexpected line %q before flush", errProtocol, line)
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty want line", errProtocol)
		}
		id, err := object.DecodeID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errProtocol, err)
		}
		if len(req.Wants) == 0 {
			req.Capabilities = fields[1:]
		}
		req.Wants = append(req.Wants, id)
	}

	if len(req.Wants) == 0 {
		return nil, fmt.Errorf("%w: request contains no want lines", errProtocol)
	}
	return req, nil
}
