package analyzers

import (
	"fmt"
	"os"
	"sync"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// DefaultTreeResults is the file failed cargo tree runs are appended to.
const DefaultTreeResults = "tree_results.txt"

// Tree runs "cargo tree -Zno-index-update" in each package directory. The
// output of failed runs is appended to ResultsPath.
type Tree struct {
	Cargo       Cargo
	ResultsPath string

	mu sync.Mutex
}

// ScanDir runs cargo tree in dir. A failed run is a scan error.
func (t *Tree) ScanDir(dir string) error {
	out, err := t.Cargo.run(dir, "tree", "-Zno-index-update")
	if err == nil {
		return nil
	}
	if werr := t.record(dir, out); werr != nil {
		return errors.Wrap(errors.ErrCodeInternal, werr, "record tree failure for %s", dir)
	}
	return errors.Wrap(errors.ErrCodeScan, err, "%s: cargo tree failed", dir)
}

func (t *Tree) record(dir string, out cargoOutput) (err error) {
	path := t.ResultsPath
	if path == "" {
		path = DefaultTreeResults
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = fmt.Fprintf(f, "Failed: %s\n---stderr\n%s\n--stdout\n%s\n\n", dir, out.Stderr, out.Stdout)
	return err
}
