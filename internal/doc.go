// Package internal contains shared types and utilities for cdk2git.
//
// It provides configuration parsing, session management, scoped temporary
// workspaces, cleanup orchestration, and the file tree type passed between
// the synthesis and object-building packages.
package internal
