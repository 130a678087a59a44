package mirror

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Shards whose packages sit directly below them. Every other shard has one
// more directory level.
var shallowShards = map[string]bool{"1": true, "2": true}

// Tree lists the extracted package directories of a mirror.
type Tree struct {
	Root string
	Dirs []string

	// Errors holds directories below Root that could not be read.
	Errors []error
}

// Len returns the number of package directories.
func (t *Tree) Len() int { return len(t.Dirs) }

// Collect lists one directory per extracted package version under root. It
// does no version resolution; whatever is on disk is returned, in lexical
// order. Files at any level are ignored.
func Collect(root string) (*Tree, error) {
	shards, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read mirror root %s", root)
	}

	t := &Tree{Root: root}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		depth := 3
		if !shallowShards[shard.Name()] {
			depth = 4
		}
		t.descend(filepath.Join(root, shard.Name()), depth-1)
	}
	return t, nil
}

// descend appends the directories found levels below dir.
func (t *Tree) descend(dir string, levels int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Errors = append(t.Errors, errors.Wrap(errors.ErrCodeIndexing, err, "read %s", dir))
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if levels == 1 {
			t.Dirs = append(t.Dirs, p)
			continue
		}
		t.descend(p, levels-1)
	}
}
