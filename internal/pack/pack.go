// Package pack encodes and decodes git pack streams. Every entry is stored
// whole (undeltified) with a zlib-compressed payload; the stream ends with
// a sha1 checksum over every preceding byte.
package pack

import (
	"encoding/binary"
	"fmt"

	"github.com/cdk2git/cdk2git/internal/object"
)

const (
	headerSize       = 12
	supportedVersion = 2
)

var magic = [4]byte{'P', 'A', 'C', 'K'}

// ObjectType is the pack entry type encoding. Values match the canonical
// git wire format.
type ObjectType uint8

const (
	TypeCommit ObjectType = 1
	TypeTree   ObjectType = 2
	TypeBlob   ObjectType = 3
)

// TypeOf maps an object type to its pack entry encoding.
func TypeOf(t object.Type) (ObjectType, error) {
	switch t {
	case object.TypeCommit:
		return TypeCommit, nil
	case object.TypeTree:
		return TypeTree, nil
	case object.TypeBlob:
		return TypeBlob, nil
	default:
		return 0, fmt.Errorf("object type %q cannot be packed", t)
	}
}

// Header is the fixed-size pack header.
//
// Bytes:
//   - 0..3:  "PACK"
//   - 4..7:  version (big-endian)
//   - 8..11: number of objects (big-endian)
type Header struct {
	Version    uint32
	NumObjects uint32
}

// Marshal serializes the header to the canonical 12-byte form.
func (h Header) Marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf[:4], magic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.Version)
	binary.BigEndian.PutUint32(buf[8:12], h.NumObjects)
	return buf
}

// UnmarshalHeader parses a canonical pack header.
func UnmarshalHeader(data []byte) (*Header, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("pack header too short: got %d bytes", len(data))
	}
	if string(data[:4]) != string(magic[:]) {
		return nil, fmt.Errorf("invalid pack magic %q", data[:4])
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != supportedVersion {
		return nil, fmt.Errorf("unsupported pack version %d", version)
	}
	return &Header{
		Version:    version,
		NumObjects: binary.BigEndian.Uint32(data[8:12]),
	}, nil
}

// encodeEntryHeader encodes the variable-length type+size header preceding
// each object entry: the low nibble of the first byte holds the low four
// size bits, continuation bytes hold seven bits each.
func encodeEntryHeader(objType ObjectType, size uint64) []byte {
	b := byte((objType & 0x7) << 4)
	b |= byte(size & 0x0f)
	size >>= 4

	out := make([]byte, 0, 10)
	if size > 0 {
		b |= 0x80
	}
	out = append(out, b)

	for size > 0 {
		next := byte(size & 0x7f)
		size >>= 7
		if size > 0 {
			next |= 0x80
		}
		out = append(out, next)
	}
	return out
}

func decodeEntryHeader(data []byte) (ObjectType, uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, 0, fmt.Errorf("entry header truncated")
	}

	b := data[0]
	objType := ObjectType((b >> 4) & 0x7)
	size := uint64(b & 0x0f)
	shift := uint(4)
	consumed := 1

	for b&0x80 != 0 {
		if consumed >= len(data) {
			return 0, 0, 0, fmt.Errorf("entry header truncated")
		}
		b = data[consumed]
		size |= uint64(b&0x7f) << shift
		shift += 7
		consumed++
	}
	return objType, size, consumed, nil
}
