package object

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cdk2git/cdk2git/internal"
)

// ErrEmptyTree is returned when synthesis produced no files. An empty
// advertisement is unclonable anyway, so the condition is surfaced
// explicitly instead of minting a commit over an empty root tree.
var ErrEmptyTree = errors.New("file tree is empty, nothing to commit")

// BuildOptions carry the fixed commit metadata. The epoch is a logical
// timestamp from configuration so that ids stay reproducible.
type BuildOptions struct {
	Author   Identity
	Epoch    int64
	Timezone string
	Message  string
}

// A Raw is one built object ready for pack emission.
type Raw struct {
	Type Type
	ID   ID
	Data []byte
}

// A Graph is the complete object set for one synthesized snapshot: exactly
// one commit, its trees, and its blobs. Trees and Blobs are each ordered by
// first reference in a depth-first walk from the root tree and contain no
// duplicate ids.
type Graph struct {
	CommitID ID
	RootTree ID
	Commit   Raw
	Trees    []Raw
	Blobs    []Raw
}

// Objects returns every object in pack emission order: the commit, then
// trees, then blobs.
func (g *Graph) Objects() []Raw {
	out := make([]Raw, 0, 1+len(g.Trees)+len(g.Blobs))
	out = append(out, g.Commit)
	out = append(out, g.Trees...)
	out = append(out, g.Blobs...)
	return out
}

// Build converts a file tree into a content-addressed object graph. Blobs
// are created per file, trees are built bottom-up with entries byte-sorted
// by name, and a single parentless commit references the root tree. The
// result is deterministic for a given file tree and options.
func Build(tree internal.FileTree, opts BuildOptions) (*Graph, error) {
	if len(tree) == 0 {
		return nil, ErrEmptyTree
	}

	root := newDirNode()
	for _, f := range tree {
		if err := root.insert(f); err != nil {
			return nil, err
		}
	}

	g := &Graph{}
	built := root.build()
	g.RootTree = built.id
	built.walk(g, make(map[ID]bool), make(map[ID]bool))

	commit := Commit{
		Tree:     built.id,
		Author:   opts.Author,
		Epoch:    opts.Epoch,
		Timezone: opts.Timezone,
		Message:  opts.Message,
	}
	data := commit.Marshal()
	g.CommitID = Hash(TypeCommit, data)
	g.Commit = Raw{Type: TypeCommit, ID: g.CommitID, Data: data}
	return g, nil
}

type dirNode struct {
	dirs  map[string]*dirNode
	files map[string]internal.File
}

func newDirNode() *dirNode {
	return &dirNode{
		dirs:  make(map[string]*dirNode),
		files: make(map[string]internal.File),
	}
}

func (n *dirNode) insert(f internal.File) error {
	path := strings.Trim(f.Path, "/")
	if path == "" {
		return fmt.Errorf("invalid file path %q", f.Path)
	}
	parts := strings.Split(path, "/")
	node := n
	for i, part := range parts {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid file path %q", f.Path)
		}
		if i == len(parts)-1 {
			if _, ok := node.dirs[part]; ok {
				return fmt.Errorf("path %q is both a file and a directory", f.Path)
			}
			node.files[part] = f
			return nil
		}
		if _, ok := node.files[part]; ok {
			return fmt.Errorf("path %q names a file as a directory", f.Path)
		}
		child, ok := node.dirs[part]
		if !ok {
			child = newDirNode()
			node.dirs[part] = child
		}
		node = child
	}
	return nil
}

// builtDir is one hashed directory level. Entries are in the byte-sorted
// order used for both hashing and emission.
type builtDir struct {
	id      ID
	data    []byte
	entries []TreeEntry
	subdirs map[string]*builtDir
	blobs   map[string]Raw
}

// build hashes the directory bottom-up: children first, then this level's
// sorted entry list.
func (n *dirNode) build() *builtDir {
	b := &builtDir{
		subdirs: make(map[string]*builtDir),
		blobs:   make(map[string]Raw),
	}
	t := &Tree{}
	for name, f := range n.files {
		mode := ModeFile
		if f.Executable {
			mode = ModeExec
		}
		id := Hash(TypeBlob, f.Data)
		t.Entries = append(t.Entries, TreeEntry{Mode: mode, Name: name, ID: id})
		b.blobs[name] = Raw{Type: TypeBlob, ID: id, Data: f.Data}
	}
	for name, child := range n.dirs {
		sub := child.build()
		t.Entries = append(t.Entries, TreeEntry{Mode: ModeDir, Name: name, ID: sub.id})
		b.subdirs[name] = sub
	}
	b.data = t.Marshal()
	b.entries = t.Entries
	b.id = Hash(TypeTree, b.data)
	return b
}

// walk records objects in depth-first first-reference order: this tree,
// then each entry in sorted order, descending into a subdirectory before
// moving to the next sibling. Duplicate ids are recorded once.
func (b *builtDir) walk(g *Graph, seenTrees, seenBlobs map[ID]bool) {
	if !seenTrees[b.id] {
		seenTrees[b.id] = true
		g.Trees = append(g.Trees, Raw{Type: TypeTree, ID: b.id, Data: b.data})
	}
	for _, e := range b.entries {
		if e.Mode == ModeDir {
			b.subdirs[e.Name].walk(g, seenTrees, seenBlobs)
			continue
		}
		if !seenBlobs[e.ID] {
			seenBlobs[e.ID] = true
			g.Blobs = append(g.Blobs, b.blobs[e.Name])
		}
	}
}
