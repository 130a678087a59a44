package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratescan/internal/config"
	"github.com/matzehuels/cratescan/pkg/corpus"
	"github.com/matzehuels/cratescan/pkg/filter"
	"github.com/matzehuels/cratescan/pkg/mirror"
	"github.com/matzehuels/cratescan/pkg/observability"
	"github.com/matzehuels/cratescan/pkg/scan"
)

// runFlags are the per-command flags shared by every scan command.
type runFlags struct {
	versions      corpus.Versions
	strict        bool
	progressEvery int64
}

// registerVersions adds --versions with the command's default view.
func (f *runFlags) registerVersions(cmd *cobra.Command, def corpus.Versions) {
	f.versions = def
	cmd.Flags().Var(&f.versions, "versions", "corpus view: all or latest")
}

// registerRun adds --strict and --progress-every.
func (f *runFlags) registerRun(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit non-zero when any error was counted")
	cmd.Flags().Int64Var(&f.progressEvery, "progress-every", 0, "log progress every N units (default from config)")
}

// apply overlays the flags the user set on cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("strict") {
		cfg.Strict = f.strict
	}
	if cmd.Flags().Changed("progress-every") {
		cfg.ProgressEvery = f.progressEvery
	}
}

// summary is a report that prints "<label>: <count>" lines.
type summary interface {
	Print(w io.Writer) error
}

// collectCorpus indexes root and logs every indexing error.
func (c *CLI) collectCorpus(ctx context.Context, root string, mode corpus.Versions) (*corpus.Corpus, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	crp, err := corpus.Collect(root, mode)
	if err != nil {
		return nil, err
	}
	for _, e := range crp.Errors {
		logger.Error("indexing error", "err", e)
	}
	observability.Corpus().OnIndexed(ctx, root, mode.String(), crp.Len(), len(crp.Errors), prog.elapsed())
	prog.done(fmt.Sprintf("Indexed %d archives (%s)", crp.Len(), mode))
	return crp, nil
}

// collectMirror lists the package directories of an extracted mirror.
func (c *CLI) collectMirror(ctx context.Context, root string) (*mirror.Tree, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tree, err := mirror.Collect(root)
	if err != nil {
		return nil, err
	}
	for _, e := range tree.Errors {
		logger.Error("indexing error", "err", e)
	}
	observability.Corpus().OnIndexed(ctx, root, "mirror", tree.Len(), len(tree.Errors), prog.elapsed())
	prog.done(fmt.Sprintf("Found %d package directories", tree.Len()))
	return tree, nil
}

// newRunner builds a scan runner from cfg. fallback is the command's default
// workers multiplier.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, fallback int) *scan.Runner {
	r := scan.NewRunner(scan.WorkerCount(cfg.Multiplier(fallback)), loggerFromContext(ctx))
	r.ProgressEvery = cfg.ProgressEvery
	return r
}

// scanArchives runs s over the corpus view at root and finishes the command.
// after, when set, runs between the scan and the summary.
func (c *CLI) scanArchives(cmd *cobra.Command, flags *runFlags, root string, f filter.Filter, s scan.EntryScanner, after func() error) error {
	ctx := cmd.Context()
	cfg := c.settings()
	flags.apply(cmd, &cfg)

	crp, err := c.collectCorpus(ctx, root, flags.versions)
	if err != nil {
		return err
	}
	report := c.newRunner(ctx, cfg, 1).ScanArchives(ctx, crp.Paths, f, s)
	if after != nil {
		if err := after(); err != nil {
			return err
		}
	}
	c.printRun(report)
	return c.finish(cfg, report, report.Failures()+int64(len(crp.Errors)))
}

// scanDirs runs s over every package directory of the mirror at root.
func (c *CLI) scanDirs(cmd *cobra.Command, flags *runFlags, root string, fallback int, s scan.DirScanner) error {
	ctx := cmd.Context()
	cfg := c.settings()
	flags.apply(cmd, &cfg)

	tree, err := c.collectMirror(ctx, root)
	if err != nil {
		return err
	}
	report := c.newRunner(ctx, cfg, fallback).ScanDirs(ctx, tree.Dirs, s)
	c.printRun(report)
	return c.finish(cfg, report, report.Failures()+int64(len(tree.Errors)))
}

// printRun writes a one-line status for a finished scan.
func (c *CLI) printRun(r *scan.Report) {
	if r.Failed() {
		printWarning(c.Stderr, "%s scan finished with %d errors", r.Kind, r.Failures())
	} else {
		printSuccess(c.Stderr, "%s scan finished", r.Kind)
	}
	printStats(c.Stderr,
		fmt.Sprintf("%d scanned", r.Scanned),
		r.Duration.Round(time.Millisecond).String(),
		"run "+r.RunID.String()[:8])
}

// finish prints the summary to stdout and applies strict mode.
func (c *CLI) finish(cfg config.Config, s summary, failures int64) error {
	if err := s.Print(c.Stdout); err != nil {
		return err
	}
	return strictExit(cfg, failures)
}

// strictExit fails the command when strict mode is on and errors were counted.
func strictExit(cfg config.Config, failures int64) error {
	if cfg.Strict && failures > 0 {
		return fmt.Errorf("%d errors counted (strict mode)", failures)
	}
	return nil
}
