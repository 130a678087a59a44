package analyzers

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// BuildDeps counts how many manifests list each crate under
// [build-dependencies]. Renamed dependencies are counted under their key.
type BuildDeps struct {
	mu     sync.Mutex
	counts map[string]int
}

// Count is one crate's number of appearances.
type Count struct {
	Name  string
	Count int
}

// ScanEntry adds the build-dependencies of one manifest to the totals.
func (b *BuildDeps) ScanEntry(path, contents string) error {
	var doc struct {
		BuildDeps any `toml:"build-dependencies"`
	}
	if _, err := toml.Decode(contents, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "parse toml %s", path)
	}
	if doc.BuildDeps == nil {
		return nil
	}
	table, ok := doc.BuildDeps.(map[string]any)
	if !ok {
		return errors.New(errors.ErrCodeScan, "%s: build-dependencies is a %T, not a table", path, doc.BuildDeps)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.counts == nil {
		b.counts = make(map[string]int)
	}
	for name := range table {
		b.counts[name]++
	}
	return nil
}

// Counts returns the totals in ascending order of count, ties broken by name.
func (b *BuildDeps) Counts() []Count {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Count, 0, len(b.counts))
	for name, n := range b.counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Print writes one "name: count" line per crate.
func (b *BuildDeps) Print(w io.Writer) error {
	for _, c := range b.Counts() {
		if _, err := fmt.Fprintf(w, "%s: %d\n", c.Name, c.Count); err != nil {
			return err
		}
	}
	return nil
}
