package corpus

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/cratescan/pkg/errors"
	"github.com/matzehuels/cratescan/pkg/version"
)

// Ext is the file extension of a package archive.
const Ext = ".crate"

// Corpus is one view of the archives under Root. It is built once and not
// modified afterwards.
type Corpus struct {
	Root string
	Mode Versions

	// Paths lists the selected archives. Paths are Root joined with the
	// archive's relative path.
	Paths []string

	// Selection maps package name to its newest archive. Only set for Latest.
	Selection Selection

	// Errors holds the per-entry indexing errors encountered during the walk.
	Errors []error
}

// Len returns the number of archives in the view.
func (c *Corpus) Len() int { return len(c.Paths) }

// Collect walks root once and returns the requested view.
func Collect(root string, mode Versions) (*Corpus, error) {
	switch mode {
	case All:
		return CollectAll(root)
	case Latest:
		return CollectLatest(root)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown versions mode: %d", int(mode))
	}
}

// CollectAll returns every file under root whose name ends in [Ext],
// regardless of nesting depth. Paths come out in lexical walk order.
func CollectAll(root string) (*Corpus, error) {
	c := &Corpus{Root: root, Mode: All}
	err := walkArchives(root, &c.Errors, func(path string) {
		c.Paths = append(c.Paths, path)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CollectLatest returns, for every package under root, the archive with the
// greatest version. Archives whose version cannot be derived are reported in
// Errors and skipped. Paths are sorted by package name.
func CollectLatest(root string) (*Corpus, error) {
	c := &Corpus{Root: root, Mode: Latest, Selection: make(Selection)}
	err := walkArchives(root, &c.Errors, func(path string) {
		e, err := ParseEntry(root, path)
		if err != nil {
			c.Errors = append(c.Errors, err)
			return
		}
		c.Selection.Observe(e)
	})
	if err != nil {
		return nil, err
	}
	c.Paths = c.Selection.Paths(root)
	return c, nil
}

// walkArchives calls fn for every archive file under root. Unreadable
// entries below root are appended to errs; an unreadable root is returned.
func walkArchives(root string, errs *[]error, fn func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "walk corpus root %s", root)
			}
			*errs = append(*errs, errors.Wrap(errors.ErrCodeIndexing, err, "read %s", path))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Ext) {
			return nil
		}
		fn(path)
		return nil
	})
}

// Entry is an archive path with the attributes derived from its location.
type Entry struct {
	Path    string          // path as found by the walk
	RelPath string          // path relative to the corpus root
	Package string          // name of the parent directory
	Version version.Version // parsed from the file name
}

// ParseEntry derives the package name and version of the archive at path.
// The file name must be "<package>-<version>.crate" where <package> is the
// name of the directory containing it.
func ParseEntry(root, path string) (Entry, error) {
	pkg := filepath.Base(filepath.Dir(path))
	name := filepath.Base(path)

	prefix := pkg + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Ext) || len(name) <= len(prefix)+len(Ext) {
		return Entry{}, errors.New(errors.ErrCodeIndexing, "%s: file name does not match %s<version>%s", path, prefix, Ext)
	}
	raw := name[len(prefix) : len(name)-len(Ext)]

	v, err := version.Parse(raw)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeIndexing, err, "%s: invalid version", path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeIndexing, err, "%s: not under %s", path, root)
	}

	return Entry{Path: path, RelPath: rel, Package: pkg, Version: v}, nil
}

// Selected is the archive currently kept for one package.
type Selected struct {
	RelPath string
	Version version.Version
}

// Selection maps package name to its newest archive.
type Selection map[string]Selected

// Observe records e, replacing the current pick for its package when e's
// version is not lower. On equal versions the last observed entry wins.
func (s Selection) Observe(e Entry) {
	cur, ok := s[e.Package]
	if ok && e.Version.Compare(cur.Version) < 0 {
		return
	}
	s[e.Package] = Selected{RelPath: e.RelPath, Version: e.Version}
}

// Paths returns the selected archives joined onto root, sorted by package
// name.
func (s Selection) Paths(root string) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(root, s[name].RelPath))
	}
	return paths
}
