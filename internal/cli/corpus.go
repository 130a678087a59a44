package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratescan/pkg/corpus"
	"github.com/matzehuels/cratescan/pkg/mirror"
	"github.com/matzehuels/cratescan/pkg/scan"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var flags runFlags
	var withVersions bool

	cmd := &cobra.Command{
		Use:   "list <crates-dir>",
		Short: "List the archives of a corpus view",
		Long: `List prints one archive path per line. With --versions latest only the
newest version of each package is listed, sorted by package name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			flags.apply(cmd, &cfg)

			crp, err := c.collectCorpus(cmd.Context(), args[0], flags.versions)
			if err != nil {
				return err
			}
			for _, p := range crp.Paths {
				line := p
				if withVersions {
					if e, err := corpus.ParseEntry(crp.Root, p); err == nil {
						line = fmt.Sprintf("%s\t%s", e.Package, e.Version)
					}
				}
				if _, err := fmt.Fprintln(c.Stdout, line); err != nil {
					return err
				}
			}

			printSuccess(c.Stderr, "%d archives", crp.Len())
			printKeyValue(c.Stderr, "view", flags.versions.String())
			if len(crp.Errors) > 0 {
				printKeyValue(c.Stderr, "errors", StyleNumber.Render(fmt.Sprint(len(crp.Errors))))
			}
			return strictExit(cfg, int64(len(crp.Errors)))
		},
	}

	flags.registerVersions(cmd, corpus.All)
	cmd.Flags().BoolVar(&withVersions, "show-versions", false, "print package name and version instead of the path")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when any indexing error was counted")
	return cmd
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "extract <crates-dir> <out-dir>",
		Short: "Extract the newest version of every package",
		Long: `Extract unpacks the newest archive of every package into out-dir, keeping
the shard layout of the corpus. Packages whose newest version is already
extracted are skipped; older extracted versions are removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			flags.apply(cmd, &cfg)

			crp, err := c.collectCorpus(ctx, args[0], corpus.Latest)
			if err != nil {
				return err
			}
			x := &mirror.Extractor{
				Workers: scan.WorkerCount(cfg.Multiplier(1)),
				Logger:  loggerFromContext(ctx),
			}
			report := x.Extract(ctx, crp, args[1])

			if report.Failed() {
				printWarning(c.Stderr, "extraction finished with %d errors", report.Errors)
			} else {
				printSuccess(c.Stderr, "extraction finished")
			}
			printStats(c.Stderr,
				fmt.Sprintf("%d extracted", report.Extracted),
				fmt.Sprintf("%d already present", report.Skipped),
				"run "+report.RunID.String()[:8])
			return c.finish(cfg, report, report.Errors+int64(len(crp.Errors)))
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when any error was counted")
	return cmd
}
