// Package publish fills per-platform registry packages with prebuilt
// binaries and uploads them.
//
// A Publisher drives one ecosystem Strategy through a fixed sequence:
// preflight, plan, prepare, copy, publish. Everything that can fail
// without side effects (credentials, manifests, artifacts) is checked
// before the first file is written, and the first failed upload halts the
// run. Already published packages are not rolled back.
package publish
