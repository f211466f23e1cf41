// Package fileutil provides file system helpers shared by the release
// pipeline: atomic writes, size-limited reads and metadata-preserving copies.
//
// Every write goes through a temporary file in the destination directory
// followed by a rename, so an interrupted run never leaves a half-written
// manifest or binary behind.
package fileutil
