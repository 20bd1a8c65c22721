package internal

// SessionID uniquely identifies one request's scoped resources.
type SessionID string

// A File is one synthesized output file: a slash-separated path relative to
// the synthesis output root and its exact byte content. No content
// transformation (encoding, line-ending normalization) is applied anywhere.
type File struct {
	Path       string
	Data       []byte
	Executable bool
}

// A FileTree is the synthesis output in discovery order.
type FileTree []File
