// Package pktline implements the length-prefixed line framing used by the
// git smart protocols: a 4-digit ASCII hex length (including itself)
// followed by that many payload bytes, with "0000" as a flush packet.
package pktline

import (
	"errors"
	"fmt"
	"io"
)

// MaxPayloadLen is the maximum length of a pkt-line payload.
const MaxPayloadLen = 65516

// ErrTooLong is returned by Writer.Write if the payload length exceeds
// MaxPayloadLen.
var ErrTooLong = errors.New("pkt-line payload too long")

// ErrMalformed is returned by Reader when the stream violates the framing.
var ErrMalformed = errors.New("malformed pkt-line")

// A Writer writes pkt-line records to an underlying writer.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes p as a single pkt-line record.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) > MaxPayloadLen {
		return 0, ErrTooLong
	}
	if _, err := fmt.Fprintf(w.w, "%04x", len(p)+4); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// WriteString writes s as a single pkt-line record.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush writes a flush packet.
func (w *Writer) Flush() error {
	_, err := io.WriteString(w.w, "0000")
	return err
}

// A Reader reads pkt-line records from an underlying reader.
type Reader struct {
	r io.Reader
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadLine returns the payload of the next pkt-line. A flush packet is
// returned as (nil, false, nil); an empty pkt-line ("0004") as a non-nil
// empty slice. io.EOF is returned at a clean end of stream, ErrMalformed
// when the length prefix is not hex or the payload is truncated.
func (r *Reader) ReadLine() (payload []byte, flush bool, err error) {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r.r, prefix); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, false, fmt.Errorf("%w: truncated length prefix", ErrMalformed)
		}
		return nil, false, err
	}

	n, err := parseHexLen(prefix)
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, true, nil
	}
	if n < 4 || n-4 > MaxPayloadLen {
		return nil, false, fmt.Errorf("%w: invalid length %d", ErrMalformed, n)
	}

	payload = make([]byte, n-4)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, false, fmt.Errorf("%w: truncated payload", ErrMalformed)
	}
	return payload, false, nil
}

func parseHexLen(prefix []byte) (int, error) {
	n := 0
	for _, c := range prefix {
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'f':
			v = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = int(c-'A') + 10
		default:
			return 0, fmt.Errorf("%w: length prefix %q is not hex", ErrMalformed, prefix)
		}
		n = n<<4 | v
	}
	return n, nil
}
