// Package bump stamps a single release version into every manifest that
// ships the binary.
//
// Three sources of truth are kept in step:
//
//   - the Cargo manifest of the CLI crate (text rewrite of its version line),
//   - every npm package.json under the npm packaging root, including the
//     optionalDependencies of the meta package,
//   - every pyproject.toml under the PyPI packaging root (text rewrite).
//
// Text rewrites touch only the value of the first `version = "..."` line and
// keep the rest of the file byte-for-byte. JSON manifests keep their key
// order and are written back with two-space indentation. Running the same
// version twice produces identical files.
package bump
