package analyzers

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// ManifestDeps looks for suspicious dependency tables in Cargo.toml files:
// dependency sections that are not tables, dependency values that are
// neither a version string nor a table, and inline tables with no keys.
type ManifestDeps struct {
	Out io.Writer
	p   printer
}

// ScanEntry checks one manifest. A manifest that is not valid TOML is a
// scan error.
func (m *ManifestDeps) ScanEntry(path, contents string) error {
	var doc map[string]any
	if _, err := toml.Decode(contents, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "parse toml %s", path)
	}

	m.checkDeps(path, doc["dependencies"])
	if targets, ok := doc["target"].(map[string]any); ok {
		for _, t := range targets {
			if table, ok := t.(map[string]any); ok {
				m.checkDeps(path, table["dependencies"])
			}
		}
	}
	return nil
}

func (m *ManifestDeps) checkDeps(path string, deps any) {
	if deps == nil {
		return
	}
	table, ok := deps.(map[string]any)
	if !ok {
		m.p.printf(m.Out, "%s: invalid deps syntax: %v", path, deps)
		return
	}
	for name, dep := range table {
		switch d := dep.(type) {
		case map[string]any:
			if len(d) == 0 {
				m.p.printf(m.Out, "found match: %s (%s)", path, name)
			}
		case string:
		default:
			m.p.printf(m.Out, "%s: invalid table for %s", path, name)
		}
	}
}
