// Package version orders package version strings by semantic version
// precedence.
//
// It is a thin adapter over [semver]: parsing is strict (exactly
// MAJOR.MINOR.PATCH with optional pre-release and build metadata, no "v"
// prefix, no leading zeros), and ordering follows the semver 2.0.0 rules,
// so a pre-release ranks below the release it precedes:
//
//	a, _ := version.Parse("2.0.0-beta")
//	b, _ := version.Parse("2.0.0")
//	a.Less(b) // true
//
// Build metadata does not take part in ordering; two versions that differ
// only in metadata compare equal.
//
// [semver]: https://github.com/Masterminds/semver
package version
