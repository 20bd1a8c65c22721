// Package synth runs the external synthesis tool and captures its output
// as an in-memory file tree.
//
// The tool itself is an opaque collaborator; this package never inspects
// or transforms what it produces. Two runners are provided: ExecRunner
// invokes the tool directly on the host, DockerRunner runs a pinned
// synthesis image through the Docker API for hermetic execution. Both
// guarantee that every temporary resource is released on every exit path.
package synth
