// Package githttp serves freshly synthesized file trees over the git
// smart-HTTP protocol.
//
// The Handler type implements the two requests of a clone: the refs
// advertisement (GET info/refs) and the pack fetch (POST git-upload-pack).
// Both are stateless; each re-runs synthesis and rebuilds the object graph,
// relying on deterministic object ids to keep the two halves consistent.
// Push (git-receive-pack) is rejected unconditionally.
package githttp
