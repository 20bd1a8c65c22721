package pktline

import "io"

// Side-band channel numbers.
const (
	BandData     byte = 1
	BandProgress byte = 2
	BandError    byte = 3
)

// maxSidebandChunk keeps one band byte plus the chunk under the pkt-line
// payload limit. The side-band-64k capability allows the full limit.
const maxSidebandChunk = MaxPayloadLen - 1

// A SidebandWriter multiplexes a byte stream onto one side-band channel,
// chunking it into pkt-lines.
type SidebandWriter struct {
	pw   *Writer
	band byte
}

// NewSidebandWriter creates a SidebandWriter emitting on the given band.
func NewSidebandWriter(w io.Writer, band byte) *SidebandWriter {
	return &SidebandWriter{pw: NewWriter(w), band: band}
}

// Write chunks p into band-prefixed pkt-lines.
func (w *SidebandWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > maxSidebandChunk {
			n = maxSidebandChunk
		}
		chunk := make([]byte, 0, n+1)
		chunk = append(chunk, w.band)
		chunk = append(chunk, p[:n]...)
		if _, err := w.pw.Write(chunk); err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

// Close terminates the multiplexed stream with a flush packet.
func (w *SidebandWriter) Close() error {
	return w.pw.Flush()
}
