package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratescan/pkg/analyzers"
	"github.com/matzehuels/cratescan/pkg/corpus"
	"github.com/matzehuels/cratescan/pkg/filter"
	"github.com/matzehuels/cratescan/pkg/scan"
)

// cargoManifest selects the manifests of a crate archive.
var cargoManifest = filter.FileName("Cargo.toml")

// archiveCommand builds a command that runs one entry scanner over a corpus
// view. Commands with extra arguments or flags are written out in full.
func (c *CLI) archiveCommand(use, short string, def corpus.Versions, f filter.Filter, newScanner func() scan.EntryScanner) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   use + " <crates-dir>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.scanArchives(cmd, &flags, args[0], f, newScanner(), nil)
		},
	}
	flags.registerVersions(cmd, def)
	flags.registerRun(cmd)
	return cmd
}

func (c *CLI) manifestDepsCommand() *cobra.Command {
	return c.archiveCommand("manifest-deps",
		"Report malformed dependency tables in Cargo.toml files",
		corpus.All, cargoManifest,
		func() scan.EntryScanner { return &analyzers.ManifestDeps{Out: c.Stdout} })
}

func (c *CLI) tomlCompareCommand() *cobra.Command {
	return c.archiveCommand("toml-compare",
		"Compare two TOML parsers on every TOML file and Cargo.lock",
		corpus.All, filter.Any(filter.Extension("toml"), filter.FileName("Cargo.lock")),
		func() scan.EntryScanner { return analyzers.TOMLCompare{} })
}

func (c *CLI) stringContinuationCommand() *cobra.Command {
	return c.archiveCommand("string-continuation",
		"Find string continuations followed by a blank line in Rust sources",
		corpus.All, filter.Extension("rs"),
		func() scan.EntryScanner { return &analyzers.StringContinuation{Out: c.Stdout} })
}

// buildDepsCommand counts build-dependencies and prints the totals before
// the summary.
func (c *CLI) buildDepsCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "build-deps <crates-dir>",
		Short: "Count how often each crate is used as a build dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counter := &analyzers.BuildDeps{}
			return c.scanArchives(cmd, &flags, args[0], cargoManifest, counter, func() error {
				return counter.Print(c.Stdout)
			})
		},
	}
	flags.registerVersions(cmd, corpus.Latest)
	flags.registerRun(cmd)
	return cmd
}

// linksCommand compares manifests with a registry index checkout.
func (c *CLI) linksCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "links <crates-dir> <index-dir>",
		Short: "Compare the links key of manifests with the registry index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			cfg := c.settings()
			idx, err := analyzers.LoadIndex(ctx, args[1], scan.WorkerCount(cfg.Multiplier(1)))
			if err != nil {
				return err
			}
			prog.done("Loaded registry index")
			logger.Info("found crates with links", "count", len(idx))

			s := &analyzers.Links{Index: idx, Out: c.Stdout, Logger: logger}
			return c.scanArchives(cmd, &flags, args[0], cargoManifest, s, nil)
		},
	}
	flags.registerVersions(cmd, corpus.All)
	flags.registerRun(cmd)
	return cmd
}

// findCommand prints the display path of every entry matching a glob.
func (c *CLI) findCommand() *cobra.Command {
	var flags runFlags
	var pattern string
	cmd := &cobra.Command{
		Use:   "find <crates-dir>",
		Short: "Print archive entries matching a glob",
		Long: `Find prints "<archive>/<entry>" for every entry whose in-archive path
matches --glob. Patterns use doublestar syntax, e.g. "*/build.rs" or "**/*.proto".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Glob(pattern)
			if err != nil {
				return err
			}
			return c.scanArchives(cmd, &flags, args[0], f, &analyzers.Find{Out: c.Stdout}, nil)
		},
	}
	cmd.Flags().StringVar(&pattern, "glob", "", "doublestar pattern over in-archive paths")
	_ = cmd.MarkFlagRequired("glob")
	flags.registerVersions(cmd, corpus.All)
	flags.registerRun(cmd)
	return cmd
}
