package fixture

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// FormatVersion is the version written into every manifest.
const FormatVersion = "v1.0.0"

// IsCompatibleVersion checks if a fixture written with version can be read
// by this package.
// Compatibility rules:
// - Major version must match exactly.
// - Minor and patch versions can differ.
func IsCompatibleVersion(version string) (bool, error) {
	if !semver.IsValid(version) {
		return false, fmt.Errorf("invalid fixture version: %q", version)
	}
	return semver.Major(version) == semver.Major(FormatVersion), nil
}

// CompatibilityError returns a user-friendly message for an incompatible
// fixture version.
func CompatibilityError(version string) string {
	return fmt.Sprintf(
		"fixture version %s is incompatible with format version %s. Required version: %s.x.x",
		version, FormatVersion, semver.Major(FormatVersion),
	)
}
