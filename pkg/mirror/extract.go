package mirror

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratescan/pkg/corpus"
	"github.com/matzehuels/cratescan/pkg/errors"
	"github.com/matzehuels/cratescan/pkg/observability"
)

// KindExtract is the kind reported to scan hooks by the extractor.
const KindExtract = "extract"

// Extractor unpacks a corpus view into a mirror directory.
type Extractor struct {
	Workers int
	Logger  *log.Logger
	Hooks   observability.ScanHooks
}

// ExtractReport is the outcome of one extraction run.
type ExtractReport struct {
	RunID     uuid.UUID
	Extracted int64
	Errors    int64
	Skipped   int64 // already present in the mirror
	Total     int
	Duration  time.Duration
}

// Failed reports whether any archive failed to extract.
func (r *ExtractReport) Failed() bool { return r.Errors > 0 }

// Print writes the summary as "<label>: <count>" lines.
func (r *ExtractReport) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "extracted: %d\nerrors: %d\ntotal: %d\n", r.Extracted, r.Errors, r.Total)
	return err
}

// Extract unpacks every archive of c below out, keeping the archive's path
// relative to c.Root. The package directory receiving an archive is
// recreated first, which drops previously extracted versions. Archives whose
// target directory already exists are skipped.
func (x *Extractor) Extract(ctx context.Context, c *corpus.Corpus, out string) *ExtractReport {
	logger := x.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := x.Hooks
	if hooks == nil {
		hooks = observability.Scan()
	}
	workers := max(x.Workers, 1)

	start := time.Now()
	report := &ExtractReport{RunID: uuid.New(), Total: c.Len()}
	logger = logger.With("run", report.RunID.String()[:8])
	logger.Info("extracting archives", "count", c.Len(), "out", out, "workers", workers)
	hooks.OnScanStart(ctx, KindExtract, c.Len())

	var extracted, failed, skipped atomic.Int64
	var g errgroup.Group
	g.SetLimit(workers)
	for _, p := range c.Paths {
		g.Go(func() error {
			unitStart := time.Now()
			done, err := x.extractOne(logger, c.Root, p, out)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Error("extract error", "archive", p, "err", err)
			case done:
				extracted.Add(1)
			default:
				skipped.Add(1)
			}
			hooks.OnUnitComplete(ctx, KindExtract, p, time.Since(unitStart), err)
			return nil
		})
	}
	_ = g.Wait()

	report.Extracted = extracted.Load()
	report.Errors = failed.Load()
	report.Skipped = skipped.Load()
	report.Duration = time.Since(start)
	hooks.OnScanComplete(ctx, KindExtract, report.Errors, report.Duration)
	logger.Info("extraction complete", "extracted", report.Extracted, "skipped", report.Skipped,
		"duration", report.Duration.Round(time.Millisecond))
	return report
}

// extractOne reports false with a nil error when the target already exists.
func (x *Extractor) extractOne(logger *log.Logger, root, archivePath, out string) (bool, error) {
	rel, err := filepath.Rel(root, archivePath)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidPath, err, "%s is not under %s", archivePath, root)
	}
	target := filepath.Join(out, strings.TrimSuffix(rel, corpus.Ext))
	if _, err := os.Stat(target); err == nil {
		return false, nil
	}

	parent := filepath.Dir(target)
	if err := os.RemoveAll(parent); err != nil {
		return false, errors.Wrap(errors.ErrCodeLoad, err, "remove old versions in %s", parent)
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return false, errors.Wrap(errors.ErrCodeLoad, err, "create %s", parent)
	}

	logger.Debug("extracting", "archive", archivePath, "into", target)
	if err := ExtractArchive(archivePath, parent); err != nil {
		// A partial target would be skipped by the next run.
		_ = os.RemoveAll(target)
		return false, err
	}
	return true, nil
}

// ExtractArchive writes the regular files and directories of the gzipped tar
// archive at archivePath below dir. Entries whose path would leave dir are
// rejected; other entry types are ignored.
func ExtractArchive(archivePath, dir string) (err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLoad, err, "open %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLoad, err, "gzip %s", archivePath)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeLoad, err, "read entry in %s", archivePath)
		}

		name := strings.TrimSuffix(hdr.Name, "/")
		if err := errors.ValidateEntryPath(name); err != nil {
			return errors.Wrap(errors.ErrCodeLoad, err, "%s: entry %q", archivePath, hdr.Name)
		}
		dest := filepath.Join(dir, filepath.FromSlash(name))

		mode := hdr.FileInfo().Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeLoad, err, "create %s", dest)
			}
		case mode.IsRegular():
			if err := writeFile(dest, tr, mode.Perm()|0o600); err != nil {
				return errors.Wrap(errors.ErrCodeLoad, err, "write %s", dest)
			}
		}
	}
}

func writeFile(dest string, r io.Reader, perm fs.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(out, r)
	return err
}
