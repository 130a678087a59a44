package analyzers

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Metadata runs "cargo metadata --no-deps" in each package and prints
// dependencies that enable a feature whose name starts with an underscore.
type Metadata struct {
	Cargo Cargo
	Out   io.Writer
	p     printer
}

// metadataOutput is the subset of cargo metadata's format version 1 that is
// read.
type metadataOutput struct {
	Packages []struct {
		Name         string `json:"name"`
		Dependencies []struct {
			Name     string   `json:"name"`
			Features []string `json:"features"`
		} `json:"dependencies"`
	} `json:"packages"`
}

// ScanDir inspects the package in dir. A failed cargo run, unparseable
// output or a workspace with more than one package is a scan error.
func (m *Metadata) ScanDir(dir string) error {
	out, err := m.Cargo.run(dir, "metadata", "--no-deps", "--format-version", "1",
		"--manifest-path", filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "could not run metadata for %s: %s", dir, strings.TrimSpace(string(out.Stderr)))
	}

	var meta metadataOutput
	if err := json.Unmarshal(out.Stdout, &meta); err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "decode metadata for %s", dir)
	}
	if len(meta.Packages) != 1 {
		return errors.New(errors.ErrCodeScan, "%s: expected 1 package, got %d", dir, len(meta.Packages))
	}

	for _, dep := range meta.Packages[0].Dependencies {
		for _, f := range dep.Features {
			if strings.HasPrefix(f, "_") {
				m.p.printf(m.Out, "%s depends on %s with features: %v", dir, dep.Name, dep.Features)
				break
			}
		}
	}
	return nil
}
