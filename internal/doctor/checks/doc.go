// Package checks implements the release readiness checks run by
// `release doctor`. Every check is read-only.
package checks
