package version

import (
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Version is a parsed semantic version. The zero value is not valid; obtain
// one from Parse.
type Version struct {
	v *semver.Version
}

// Parse parses s as a strict semantic version. Empty pre-release or build
// parts ("1.0.0-", "1.0.0+") are rejected. Failures carry the
// [errors.ErrCodeInvalidVersion] code.
func Parse(s string) (Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "parse version %q", s)
	}
	if v.String() != s {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "parse version %q: empty pre-release or build metadata", s)
	}
	return Version{v: v}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v precedes, equals or
// follows o.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// String returns the version as originally written.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}
