package scan

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// ScanDirs calls s once per directory in dirs. A failing directory is
// counted and logged; it never stops the others.
func (r *Runner) ScanDirs(ctx context.Context, dirs []string, s DirScanner) *Report {
	start := time.Now()
	report := newReport(KindUncompressed, len(dirs))
	logger := r.logger().With("run", report.RunID.String()[:8])
	hooks := r.hooks()

	logger.Info("scanning directories", "count", len(dirs), "workers", r.workers())
	hooks.OnScanStart(ctx, string(KindUncompressed), len(dirs))

	var c counters
	var g errgroup.Group
	g.SetLimit(r.workers())
	for _, dir := range dirs {
		g.Go(func() error {
			r.progress(c.scanned.Add(1), "total", len(dirs))

			unitStart := time.Now()
			err := r.scanDir(dir, s)
			if err != nil {
				c.scanErrors.Add(1)
				logger.Error("scan error", "path", dir, "err", err)
			}
			hooks.OnUnitComplete(ctx, string(KindUncompressed), dir, time.Since(unitStart), err)
			return nil
		})
	}
	_ = g.Wait()

	report.collect(&c, start)
	hooks.OnScanComplete(ctx, string(KindUncompressed), report.Failures(), report.Duration)
	logger.Info("scan complete", "processed", report.Scanned, "duration", report.Duration.Round(time.Millisecond))
	return report
}

func (r *Runner) scanDir(dir string, s DirScanner) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.New(errors.ErrCodeScan, "%s: scanner panicked: %v", dir, v)
		}
	}()
	if err := s.ScanDir(dir); err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "scan %s", dir)
	}
	return nil
}
