package pack

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/cdk2git/cdk2git/internal/object"
)

// Entry is one decoded object entry.
type Entry struct {
	Type ObjectType
	Size uint64
	Data []byte
}

// File is the decoded content of a full pack stream.
type File struct {
	Header   Header
	Entries  []Entry
	Checksum object.ID
}

// ReadPack parses a full pack byte slice, verifies the trailer checksum,
// and returns the decoded entries.
func ReadPack(data []byte) (*File, error) {
	if len(data) < headerSize+sha1.Size {
		return nil, fmt.Errorf("pack too short: %d bytes", len(data))
	}

	payload := data[:len(data)-sha1.Size]
	trailer := data[len(data)-sha1.Size:]

	sum := sha1.Sum(payload)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("pack checksum mismatch")
	}

	header, err := UnmarshalHeader(payload[:headerSize])
	if err != nil {
		return nil, err
	}

	offset := headerSize
	entries := make([]Entry, 0, header.NumObjects)
	for i := uint32(0); i < header.NumObjects; i++ {
		objType, size, n, err := decodeEntryHeader(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		offset += n
		if offset >= len(payload) {
			return nil, fmt.Errorf("entry %d: missing compressed payload", i)
		}

		sub := bytes.NewReader(payload[offset:])
		zr, err := zlib.NewReader(sub)
		if err != nil {
			return nil, fmt.Errorf("entry %d: zlib reader: %w", i, err)
		}
		raw, err := io.ReadAll(zr)
		if err != nil {
			_ = zr.Close()
			return nil, fmt.Errorf("entry %d: decompress: %w", i, err)
		}
		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("entry %d: close zlib stream: %w", i, err)
		}
		if uint64(len(raw)) != size {
			return nil, fmt.Errorf("entry %d: size mismatch header=%d decoded=%d", i, size, len(raw))
		}

		consumed := len(payload[offset:]) - sub.Len()
		offset += consumed

		entries = append(entries, Entry{Type: objType, Size: size, Data: raw})
	}

	if offset != len(payload) {
		return nil, fmt.Errorf("pack has %d trailing undecoded bytes", len(payload)-offset)
	}

	var checksum object.ID
	copy(checksum[:], trailer)
	return &File{
		Header:   *header,
		Entries:  entries,
		Checksum: checksum,
	}, nil
}
