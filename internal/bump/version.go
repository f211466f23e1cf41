package bump

import (
	"regexp"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// versionPattern accepts MAJOR.MINOR.PATCH with optional pre-release and
// build metadata. Quotes and whitespace can never pass, so a validated
// version is safe to splice into TOML and JSON.
var versionPattern = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?` +
		`(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

// ValidateVersion checks that v is a semantic-version-like token.
func ValidateVersion(v string) error {
	if !versionPattern.MatchString(v) {
		return errors.Wrapf(errors.ErrInvalidVersion, "%q", v)
	}
	return nil
}
