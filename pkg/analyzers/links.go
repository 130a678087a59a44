package analyzers

import (
	"io"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Links compares the links key of each manifest with the registry index.
// The release is identified by the manifest's parent directory, which inside
// a .crate archive is "<name>-<version>".
type Links struct {
	Index  Index
	Out    io.Writer
	Logger *log.Logger
	p      printer
}

type linksManifest struct {
	Package *struct {
		Links *string `toml:"links"`
	} `toml:"package"`
	Project *struct {
		Links *string `toml:"links"`
	} `toml:"project"`
}

// ScanEntry reports a mismatch between manifest and index. Manifests that do
// not parse are logged and skipped; a manifest with neither a [package] nor a
// [project] table is a scan error.
func (l *Links) ScanEntry(entryPath, contents string) error {
	var m linksManifest
	if _, err := toml.Decode(contents, &m); err != nil {
		loggerOrDefault(l.Logger).Warn("failed to parse toml", "path", entryPath, "err", err)
		return nil
	}

	var manifestLinks *string
	switch {
	case m.Package != nil:
		manifestLinks = m.Package.Links
	case m.Project != nil:
		manifestLinks = m.Project.Links
	default:
		return errors.New(errors.ErrCodeScan, "%s: no [package] or [project] table", entryPath)
	}

	release := path.Base(path.Dir(entryPath))
	_, inIndex := l.Index[release]
	switch {
	case manifestLinks != nil && !inIndex:
		l.p.printf(l.Out, "%s has manifest, missing registry", release)
	case manifestLinks == nil && inIndex:
		l.p.printf(l.Out, "%s has registry, not manifest!?", release)
	}
	return nil
}
