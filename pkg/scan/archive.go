package scan

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratescan/pkg/errors"
	"github.com/matzehuels/cratescan/pkg/filter"
)

// ScanArchives streams each archive in paths and hands every regular entry
// accepted by f to s. A nil filter accepts every entry.
//
// Per archive, the first load error (open, decompress, header, non-UTF-8
// path or contents) or scan error stops processing of that archive. The
// returned report counts scanned entries, load errors and scan errors over
// the whole list.
func (r *Runner) ScanArchives(ctx context.Context, paths []string, f filter.Filter, s EntryScanner) *Report {
	if f == nil {
		f = filter.Everything
	}
	start := time.Now()
	report := newReport(KindCompressed, len(paths))
	logger := r.logger().With("run", report.RunID.String()[:8])
	hooks := r.hooks()

	logger.Info("scanning archives", "count", len(paths), "workers", r.workers())
	hooks.OnScanStart(ctx, string(KindCompressed), len(paths))

	var c counters
	var g errgroup.Group
	g.SetLimit(r.workers())
	for _, p := range paths {
		g.Go(func() error {
			unitStart := time.Now()
			err := r.scanArchive(p, f, s, &c)
			if err != nil {
				if errors.Is(err, errors.ErrCodeScan) {
					c.scanErrors.Add(1)
				} else {
					c.loadErrors.Add(1)
				}
			}
			hooks.OnUnitComplete(ctx, string(KindCompressed), p, time.Since(unitStart), err)
			return nil
		})
	}
	_ = g.Wait()

	report.collect(&c, start)
	hooks.OnScanComplete(ctx, string(KindCompressed), report.Failures(), report.Duration)
	logger.Info("scan complete", "scanned", report.Scanned, "duration", report.Duration.Round(time.Millisecond))
	return report
}

// scanArchive processes one archive. It returns the error that ended the
// archive early: ErrCodeLoad for reading problems, ErrCodeScan for scanner
// failures. Both have already been logged.
func (r *Runner) scanArchive(archivePath string, f filter.Filter, s EntryScanner, c *counters) (err error) {
	logger := r.logger()

	// Entry being scanned, for the panic diagnostics.
	var displayPath, contents string
	defer func() {
		if v := recover(); v != nil {
			err = errors.New(errors.ErrCodeScan, "%s: scanner panicked: %v", displayPath, v)
			logger.Error("scanner panicked", "archive", archivePath, "path", displayPath, "panic", v, "contents", contents)
		}
	}()

	file, err := os.Open(archivePath)
	if err != nil {
		logger.Error("open error", "archive", archivePath, "err", err)
		return errors.Wrap(errors.ErrCodeLoad, err, "open %s", archivePath)
	}
	defer func() { _ = file.Close() }() // read-only

	gz, err := gzip.NewReader(file)
	if err != nil {
		logger.Error("decompress error", "archive", archivePath, "err", err)
		return errors.Wrap(errors.ErrCodeLoad, err, "gzip %s", archivePath)
	}
	defer func() { _ = gz.Close() }()

	base := filepath.Base(archivePath)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			logger.Error("entry error", "archive", archivePath, "err", err)
			return errors.Wrap(errors.ErrCodeLoad, err, "read entry in %s", archivePath)
		}
		if !utf8.ValidString(hdr.Name) {
			logger.Error("path decode error", "archive", archivePath, "path", fmt.Sprintf("%q", hdr.Name))
			return errors.New(errors.ErrCodeLoad, "%s: entry path %q is not valid UTF-8", archivePath, hdr.Name)
		}
		if !isRegular(hdr) || !f(hdr.Name) {
			continue
		}

		displayPath = path.Join(base, hdr.Name)
		contents, err = readText(tr)
		if err != nil {
			logger.Error("decode error", "path", displayPath, "err", err)
			return errors.Wrap(errors.ErrCodeLoad, err, "decode %s", displayPath)
		}

		r.progress(c.scanned.Add(1))

		if err := s.ScanEntry(displayPath, contents); err != nil {
			logger.Error("scan error", "path", displayPath, "err", err, "contents", contents)
			return errors.Wrap(errors.ErrCodeScan, err, "scan %s", displayPath)
		}
	}
}

// isRegular reports whether hdr describes file content. Directories, links
// and device entries carry nothing to scan.
func isRegular(hdr *tar.Header) bool {
	return hdr.FileInfo().Mode().IsRegular()
}

// readText reads the rest of r and requires it to be valid UTF-8.
func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("stream did not contain valid UTF-8")
	}
	return string(data), nil
}
