package corpus

import (
	"strings"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Versions selects which view of a corpus a run operates over.
type Versions int

const (
	// All selects every archive.
	All Versions = iota
	// Latest selects the newest archive of each package.
	Latest
)

// String returns "all" or "latest".
func (v Versions) String() string {
	switch v {
	case All:
		return "all"
	case Latest:
		return "latest"
	default:
		return "unknown"
	}
}

// ParseVersions parses "all" or "latest" (case-insensitive).
func ParseVersions(s string) (Versions, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return All, nil
	case "latest":
		return Latest, nil
	default:
		return All, errors.New(errors.ErrCodeInvalidInput, "unknown versions mode %q (want all or latest)", s)
	}
}

// Set implements pflag.Value so Versions can be bound to a flag directly.
func (v *Versions) Set(s string) error {
	parsed, err := ParseVersions(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Type implements pflag.Value.
func (v *Versions) Type() string { return "versions" }
