// Package object implements the git object model used to snapshot a
// synthesized file tree: sha1 content addressing and the canonical binary
// encodings for blob, tree, and commit objects.
package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Type identifies the kind of a git object.
type Type string

const (
	TypeCommit Type = "commit"
	TypeTree   Type = "tree"
	TypeBlob   Type = "blob"
)

// An ID is the sha1 name of a git object.
type ID [sha1.Size]byte

// ZeroID (20 zero bytes) designates a nonexistent object.
var ZeroID ID

// Hash computes the id of an object from its type and content. The digest
// covers the canonical store encoding "<type> <len>\x00<content>", so the id
// is a pure function of (type, content).
func Hash(t Type, content []byte) ID {
	h := sha1.New()
	h.Write([]byte(t))
	h.Write([]byte(" "))
	h.Write([]byte(strconv.Itoa(len(content))))
	h.Write([]byte{0})
	h.Write(content)
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// DecodeID parses a 40-character hexadecimal string as an object id.
func DecodeID(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	if len(b) != sha1.Size {
		return id, fmt.Errorf("invalid object id length %d, want %d", len(b), sha1.Size)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the id as a lowercase 40-digit hexadecimal string.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the id is the all-zero id.
func (id ID) IsZero() bool {
	return id == ZeroID
}
