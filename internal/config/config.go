// Package config loads cratescan settings from an optional TOML file and
// CRATESCAN_* environment variables. Command-line flags are applied on top
// by the cli package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/cratescan/pkg/errors"
)

const (
	// AppName names the config directory and the environment prefix.
	AppName = "cratescan"
	// FileName is the config file name without extension.
	FileName = "cratescan"
	// FileExt is the config file extension.
	FileExt = "toml"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	// WorkersMultiplier scales the number of CPUs into the worker count.
	// Zero selects the command's own default.
	WorkersMultiplier int `mapstructure:"workers_multiplier"`
	// ProgressEvery is the number of units between progress log lines.
	ProgressEvery int64 `mapstructure:"progress_every"`
	// Strict turns counted errors into a non-zero exit status.
	Strict bool `mapstructure:"strict"`
	// Cargo is the cargo binary used by directory analyzers.
	Cargo string `mapstructure:"cargo"`
	// TreeResults is the file failed cargo tree runs are appended to.
	TreeResults string `mapstructure:"tree_results"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProgressEvery: 10000,
		Cargo:         "cargo",
		TreeResults:   "tree_results.txt",
	}
}

// Validate rejects values the scan engines cannot run with.
func (c *Config) Validate() error {
	if c.WorkersMultiplier < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers_multiplier must not be negative, got %d", c.WorkersMultiplier)
	}
	if c.ProgressEvery < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "progress_every must not be negative, got %d", c.ProgressEvery)
	}
	if c.Cargo == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cargo must not be empty")
	}
	return nil
}

// Multiplier returns the configured workers multiplier, or fallback when
// none is configured.
func (c *Config) Multiplier(fallback int) int {
	if c.WorkersMultiplier > 0 {
		return c.WorkersMultiplier
	}
	return fallback
}

// LoadOptions controls where Load looks for a config file.
type LoadOptions struct {
	// FilePath is an explicit config file. It must exist.
	FilePath string
	// DirPath replaces the platform config directory in the search.
	DirPath string
}

// Load resolves the configuration: defaults, then the first config file
// found, then environment variables. It returns the path of the file used,
// or "" when none was found.
//
// Without an explicit FilePath the search order is the config directory
// (see Dir), then the current directory.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("progress_every", defaults.ProgressEvery)
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("cargo", defaults.Cargo)
	v.SetDefault("tree_results", defaults.TreeResults)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	for _, key := range []string{"workers_multiplier", "progress_every", "strict", "cargo", "tree_results"} {
		if err := v.BindEnv(key); err != nil {
			return nil, "", fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	path, err := findFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(FileExt)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

func findFile(opts LoadOptions) (string, error) {
	if opts.FilePath != "" {
		if !fileExists(opts.FilePath) {
			return "", errors.New(errors.ErrCodeInvalidPath, "config file not found: %s", opts.FilePath)
		}
		return opts.FilePath, nil
	}

	name := FileName + "." + FileExt
	dir := opts.DirPath
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			dir = ""
		}
	}
	if dir != "" {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p, nil
		}
	}
	if fileExists(name) {
		return name, nil
	}
	return "", nil
}

// Dir returns the config directory following XDG
// ($XDG_CONFIG_HOME/cratescan, default ~/.config/cratescan).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
