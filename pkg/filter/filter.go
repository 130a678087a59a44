// Package filter builds path filters for in-archive entries.
//
// A Filter is a pure predicate over the slash-separated path of an entry
// inside an archive (for example "serde-1.0.193/src/lib.rs"). Filters are
// called once per entry before any bytes are read and never touch the disk.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Filter reports whether an entry should be scanned.
type Filter func(entryPath string) bool

// FileName matches entries whose base name equals one of names.
func FileName(names ...string) Filter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(p string) bool {
		_, ok := set[path.Base(p)]
		return ok
	}
}

// Extension matches entries whose extension (without the dot) equals one of
// exts, e.g. Extension("rs").
func Extension(exts ...string) Filter {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set["."+strings.TrimPrefix(e, ".")] = struct{}{}
	}
	return func(p string) bool {
		_, ok := set[path.Ext(p)]
		return ok
	}
}

// Glob matches entries against a doublestar pattern such as
// "*/src/**/*.rs". The pattern is validated up front.
func Glob(pattern string) (Filter, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid glob pattern %q", pattern)
	}
	return func(p string) bool {
		ok, _ := doublestar.Match(pattern, p)
		return ok
	}, nil
}

// Any matches when at least one of fs matches.
func Any(fs ...Filter) Filter {
	return func(p string) bool {
		for _, f := range fs {
			if f(p) {
				return true
			}
		}
		return false
	}
}

// Everything matches every entry.
func Everything(string) bool { return true }
