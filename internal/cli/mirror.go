package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratescan/pkg/analyzers"
)

// registerCargo adds --cargo, overriding the cargo config key.
func registerCargo(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "cargo", "", "cargo binary (default from config)")
}

// cargoPath returns the flag value when set, else the configured binary.
func (c *CLI) cargoPath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.settings().Cargo
}

// treeCommand runs cargo tree in every extracted package.
func (c *CLI) treeCommand() *cobra.Command {
	var flags runFlags
	var cargo, results string
	cmd := &cobra.Command{
		Use:   "tree <src-dir>",
		Short: "Run cargo tree in every extracted package",
		Long: `Tree runs "cargo tree -Zno-index-update" in every package directory of an
extracted mirror (see extract). Output of failed runs is appended to the
results file. Without --jobs or workers_multiplier, two workers run per CPU.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if results == "" {
				results = c.settings().TreeResults
			}
			s := &analyzers.Tree{
				Cargo:       analyzers.Cargo{Path: c.cargoPath(cargo)},
				ResultsPath: results,
			}
			return c.scanDirs(cmd, &flags, args[0], treeMultiplier, s)
		},
	}
	registerCargo(cmd, &cargo)
	cmd.Flags().StringVar(&results, "results", "", "file failed runs are appended to (default from config)")
	flags.registerRun(cmd)
	return cmd
}

// lockCompareCommand compares lockfiles generated by two cargo builds.
func (c *CLI) lockCompareCommand() *cobra.Command {
	var flags runFlags
	var cargo string
	cmd := &cobra.Command{
		Use:   "lock-compare <src-dir> <candidate-cargo>",
		Short: "Compare Cargo.lock generated by two cargo binaries",
		Long: `Lock-compare generates a lockfile in every extracted package with the
reference cargo (--cargo) and with candidate-cargo, and reports packages
whose lockfiles differ. Shipped lockfiles are restored afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &analyzers.LockCompare{
				Reference: analyzers.Cargo{Path: c.cargoPath(cargo)},
				Candidate: analyzers.Cargo{Path: args[1]},
				Logger:    loggerFromContext(cmd.Context()),
			}
			return c.scanDirs(cmd, &flags, args[0], 1, s)
		},
	}
	registerCargo(cmd, &cargo)
	flags.registerRun(cmd)
	return cmd
}

// metadataCommand inspects cargo metadata of every extracted package.
func (c *CLI) metadataCommand() *cobra.Command {
	var flags runFlags
	var cargo string
	cmd := &cobra.Command{
		Use:   "metadata <src-dir>",
		Short: "Find dependencies enabling underscore-prefixed features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &analyzers.Metadata{
				Cargo: analyzers.Cargo{Path: c.cargoPath(cargo)},
				Out:   c.Stdout,
			}
			return c.scanDirs(cmd, &flags, args[0], 1, s)
		},
	}
	registerCargo(cmd, &cargo)
	flags.registerRun(cmd)
	return cmd
}
