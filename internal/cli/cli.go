// Package cli implements the cratescan command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratescan/internal/config"
	"github.com/matzehuels/cratescan/pkg/buildinfo"
	"github.com/matzehuels/cratescan/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "cratescan"

	// treeMultiplier is the default workers multiplier of the tree command;
	// cargo tree spends most of its time waiting on the filesystem.
	treeMultiplier = 2
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdout receives findings and the fixed-format summaries.
	Stdout io.Writer
	// Stderr receives status lines.
	Stderr io.Writer

	configPath string
	jobs       int
	cfg        *config.Config
}

// New creates a new CLI instance whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdout: os.Stdout,
		Stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Cratescan runs analyses over a crates.io archive corpus",
		Long:          `Cratescan walks a local mirror of crates.io archives, or an extracted copy of it, and runs an analysis over every package in parallel.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			observability.SetScanHooks(logHooks{c.Logger})
			observability.SetCorpusHooks(logHooks{c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cratescan/cratescan.toml)")
	root.PersistentFlags().IntVarP(&c.jobs, "jobs", "j", 0, "workers per CPU (overrides workers_multiplier)")

	// Corpus
	root.AddCommand(c.listCommand())
	root.AddCommand(c.extractCommand())

	// Archive analyses
	root.AddCommand(c.manifestDepsCommand())
	root.AddCommand(c.buildDepsCommand())
	root.AddCommand(c.linksCommand())
	root.AddCommand(c.tomlCompareCommand())
	root.AddCommand(c.stringContinuationCommand())
	root.AddCommand(c.findCommand())

	// Mirror analyses
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.lockCompareCommand())
	root.AddCommand(c.metadataCommand())

	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the config file and environment once per invocation.
func (c *CLI) loadConfig() error {
	cfg, path, err := config.Load(config.LoadOptions{FilePath: c.configPath})
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded configuration with the global flags applied.
func (c *CLI) settings() config.Config {
	cfg := config.Default()
	if c.cfg != nil {
		cfg = *c.cfg
	}
	if c.jobs > 0 {
		cfg.WorkersMultiplier = c.jobs
	}
	return cfg
}
