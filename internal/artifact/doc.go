// Package artifact locates the prebuilt release binaries.
//
// The build step (out of scope here) leaves one binary per supported
// platform under the distribution directory:
//
//	<dist>/<binary>-<target triple>/<binary>[.exe]
//
// A [Key] names one (operating system, architecture) pair. [Locator.Path]
// maps every supported key to exactly one path; unsupported keys are an
// error wrapping [ErrUnsupportedPlatform], never an empty result.
package artifact
