package object

import (
	"bytes"
	"sort"
)

// A Mode is the octal mode string git stores for a tree entry. Only the
// modes this system can produce are defined.
type Mode string

const (
	ModeDir  Mode = "40000"
	ModeFile Mode = "100644"
	ModeExec Mode = "100755"
)

// A TreeEntry names one child of a directory: a blob for a file or a tree
// for a subdirectory.
type TreeEntry struct {
	Mode Mode
	Name string
	ID   ID
}

// A Tree is the ordered entry list for one directory level.
type Tree struct {
	Entries []TreeEntry
}

// Sort orders the entries by raw name bytes. The same order is used for
// hashing and for pack emission. Unlike canonical git ordering, directory
// names are not compared with a trailing slash, so a directory sorts before
// a file it is a name prefix of.
func (t *Tree) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return t.Entries[i].Name < t.Entries[j].Name
	})
}

// Marshal returns the canonical binary tree encoding: for each entry the
// ASCII mode, a space, the raw name, a NUL, and the 20 raw id bytes.
// Entries are sorted before encoding.
func (t *Tree) Marshal() []byte {
	t.Sort()
	var buf bytes.Buffer
	for _, e := range t.Entries {
		buf.WriteString(string(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}
