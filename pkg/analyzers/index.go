package analyzers

import (
	"bufio"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// Index maps "<name>-<vers>" to the links value the registry index records
// for that release. Releases without links are absent.
type Index map[string]string

// indexLine is the subset of a registry index record that is read.
type indexLine struct {
	Name  string  `json:"name"`
	Vers  string  `json:"vers"`
	Links *string `json:"links"`
}

// LoadIndex reads every index file below dir with up to workers files in
// flight. config.json and dot-files are skipped. Any unreadable file or
// malformed line fails the whole load.
func LoadIndex(ctx context.Context, dir string, workers int) (Index, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && (name == "config.json" || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "walk index %s", dir)
	}

	var mu sync.Mutex
	idx := make(Index)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			links, err := readIndexFile(f)
			if err != nil {
				return err
			}
			mu.Lock()
			for k, v := range links {
				idx[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

func readIndexFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	links := make(map[string]string)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec indexLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoad, err, "%s:%d", path, lineNo)
		}
		if rec.Links != nil {
			links[rec.Name+"-"+rec.Vers] = *rec.Links
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "read %s", path)
	}
	return links, nil
}
