// Package version coerces the loosely formatted version strings reported by
// native clients into canonical major.minor.patch form.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-errors/errors"
)

// BuiltinBundle is reported by clients still running the bundle shipped inside the native binary.
const BuiltinBundle = "builtin"

var ErrInvalidVersionFormat = errors.New("invalid version format")

// Matches the first run of up to three dot separated numeric components that
// is bounded by non-digits, the same extraction a loose semver coercion performs.
// A run longer than 16 digits never matches.
var coerceRegexp = regexp.MustCompile(`(?:^|\D)(\d{1,16})(?:\.(\d{1,16}))?(?:\.(\d{1,16}))?(?:$|\D)`)

// Normalize extracts a semantic version from raw and returns it as major.minor.patch.
// Prerelease and build metadata are dropped.
func Normalize(raw string) (string, error) {
	v, err := Coerce(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()), nil
}

// Coerce is Normalize returning the parsed version.
func Coerce(raw string) (*semver.Version, error) {
	match := coerceRegexp.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, raw)
	}
	components := make([]string, 0, 3)
	for _, component := range match[1:] {
		if component == "" {
			break
		}
		component = strings.TrimLeft(component, "0")
		if component == "" {
			component = "0"
		}
		components = append(components, component)
	}
	v, err := semver.NewVersion(strings.Join(components, "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersionFormat, raw, err)
	}
	return v, nil
}

// BundleName returns the explicit bundle name, or the normalized native version
// when the client reported none or the builtin sentinel.
func BundleName(explicit, normalizedNative string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" || explicit == BuiltinBundle {
		return normalizedNative
	}
	return explicit
}
