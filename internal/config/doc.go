// Package config provides configuration management for the release tool.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional release.yaml, and environment variables. The file is searched in
// the current directory, then in $XDG_CONFIG_HOME/release (overridable with
// RELEASE_CONFIG_DIR):
//
//	binary_name: commitfmt
//	native_manifest: crates/commitfmt/Cargo.toml
//	dist_dir: target/distrib
//	npm:
//	  root: packaging/npm
//	  meta_package: commitfmt
//	pypi:
//	  root: packaging/pypi
//	  python: python3
//
// Every key can be overridden with RELEASE_<KEY>, dots replaced by
// underscores (RELEASE_NPM_ROOT). The PyPI token is read from PYPI_TOKEN
// and is never written to disk.
//
// Relative paths are resolved against project_root, which defaults to the
// working directory.
package config
