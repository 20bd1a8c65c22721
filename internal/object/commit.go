package object

import (
	"bytes"
	"fmt"
)

// An Identity is the fixed author/committer recorded in every commit.
type Identity struct {
	Name  string
	Email string
}

// A Commit references a single root tree and carries no parents. The epoch
// is a logical timestamp supplied by configuration, never wall-clock, so
// the commit id is reproducible for a given file tree.
type Commit struct {
	Tree     ID
	Author   Identity
	Epoch    int64
	Timezone string
	Message  string
}

// Marshal returns the canonical commit encoding. The author and committer
// lines are identical; the message follows a blank line with no trailing
// newline.
func (c *Commit) Marshal() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	fmt.Fprintf(&buf, "author %s <%s> %d %s\n", c.Author.Name, c.Author.Email, c.Epoch, c.Timezone)
	fmt.Fprintf(&buf, "committer %s <%s> %d %s\n", c.Author.Name, c.Author.Email, c.Epoch, c.Timezone)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}
