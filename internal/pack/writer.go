package pack

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/cdk2git/cdk2git/internal/object"
)

func compressPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer writes a pack stream with zlib-compressed undeltified entries.
// The trailer checksum is sha1 over all bytes preceding the trailer.
type Writer struct {
	out      io.Writer
	hasher   hash.Hash
	hashedW  io.Writer
	expected uint32
	written  uint32
	finished bool
}

// NewWriter initializes a writer and writes the fixed pack header.
func NewWriter(out io.Writer, numObjects uint32) (*Writer, error) {
	hasher := sha1.New()
	w := &Writer{
		out:      out,
		hasher:   hasher,
		hashedW:  io.MultiWriter(out, hasher),
		expected: numObjects,
	}
	header := Header{Version: supportedVersion, NumObjects: numObjects}
	if _, err := w.hashedW.Write(header.Marshal()); err != nil {
		return nil, fmt.Errorf("write pack header: %w", err)
	}
	return w, nil
}

// WriteEntry appends one whole object entry to the stream.
func (w *Writer) WriteEntry(objType ObjectType, data []byte) error {
	if w.finished {
		return fmt.Errorf("pack writer already finished")
	}
	if w.written >= w.expected {
		return fmt.Errorf("pack object count exceeded: expected %d", w.expected)
	}

	header := encodeEntryHeader(objType, uint64(len(data)))
	if _, err := w.hashedW.Write(header); err != nil {
		return fmt.Errorf("write pack entry header: %w", err)
	}

	compressed, err := compressPayload(data)
	if err != nil {
		return fmt.Errorf("compress pack entry: %w", err)
	}
	if _, err := w.hashedW.Write(compressed); err != nil {
		return fmt.Errorf("write compressed pack entry: %w", err)
	}

	w.written++
	return nil
}

// Finish validates the object count and writes the trailing checksum,
// returning it.
func (w *Writer) Finish() (object.ID, error) {
	if w.finished {
		return object.ZeroID, fmt.Errorf("pack writer already finished")
	}
	if w.written != w.expected {
		return object.ZeroID, fmt.Errorf("pack object count mismatch: wrote %d, expected %d", w.written, w.expected)
	}

	var sum object.ID
	copy(sum[:], w.hasher.Sum(nil))
	if _, err := w.out.Write(sum[:]); err != nil {
		return object.ZeroID, fmt.Errorf("write pack trailer checksum: %w", err)
	}
	w.finished = true
	return sum, nil
}

// Encode serializes a complete object graph into pack bytes. Emission order
// is the commit, then trees in depth-first first-reference order from the
// root, then blobs in the same walk order. The whole stream is assembled in
// memory so that nothing is emitted from an incomplete graph.
func Encode(g *object.Graph) ([]byte, error) {
	objects := g.Objects()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, uint32(len(objects)))
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		t, err := TypeOf(obj.Type)
		if err != nil {
			return nil, err
		}
		if err := w.WriteEntry(t, obj.Data); err != nil {
			return nil, fmt.Errorf("pack %s %s: %w", obj.Type, obj.ID, err)
		}
	}
	if _, err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
