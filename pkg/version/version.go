// Package version exposes the build version of the anascode binary.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devVersion is reported when no valid semantic version was injected at build time.
const devVersion = "dev"

// version is set at build time via
// -ldflags "-X github.com/anasaboreeda/anascode/pkg/version.version=v1.2.3".
var version = devVersion //nolint:gochecknoglobals // Set via ldflags

// GetVersion returns the normalized build version (without a leading "v"),
// or "dev" when the injected value is empty or not a semantic version.
func GetVersion() string {
	return Normalize(version)
}

// Normalize parses raw as a semantic version and returns its canonical form.
// Anything that does not parse is reported as "dev".
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == devVersion {
		return devVersion
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return devVersion
	}
	return v.String()
}

// IsRelease reports whether the running binary carries a released (non-prerelease) version.
func IsRelease() bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}
