package scan

import (
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratescan/pkg/observability"
)

// DefaultProgressEvery is how many units pass between progress lines.
const DefaultProgressEvery = 10000

// EntryScanner analyzes one decoded archive entry. displayPath is the
// archive's file name joined with the entry's in-archive path.
type EntryScanner interface {
	ScanEntry(displayPath, contents string) error
}

// EntryScannerFunc adapts a function to EntryScanner.
type EntryScannerFunc func(displayPath, contents string) error

// ScanEntry calls f.
func (f EntryScannerFunc) ScanEntry(displayPath, contents string) error {
	return f(displayPath, contents)
}

// DirScanner analyzes one extracted package directory.
type DirScanner interface {
	ScanDir(dir string) error
}

// DirScannerFunc adapts a function to DirScanner.
type DirScannerFunc func(dir string) error

// ScanDir calls f.
func (f DirScannerFunc) ScanDir(dir string) error { return f(dir) }

// Runner holds the configuration shared by both engines. It keeps no state
// between runs; every run gets fresh counters.
type Runner struct {
	// Workers is the fixed number of units processed concurrently.
	Workers int

	// ProgressEvery emits a progress line every N units. Zero disables it.
	ProgressEvery int64

	Logger *log.Logger
	Hooks  observability.ScanHooks
}

// NewRunner creates a runner with the given worker count.
// A worker count below one is raised to one; a nil logger means log.Default().
func NewRunner(workers int, logger *log.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Workers:       workers,
		ProgressEvery: DefaultProgressEvery,
		Logger:        logger,
	}
}

// WorkerCount returns the number of CPUs times multiplier, at least one.
// Callers decide the count once, before constructing a Runner.
func WorkerCount(multiplier int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	return runtime.NumCPU() * multiplier
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func (r *Runner) hooks() observability.ScanHooks {
	if r.Hooks == nil {
		return observability.Scan()
	}
	return r.Hooks
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return 1
	}
	return r.Workers
}

// progress logs a line when n lands on the progress interval.
func (r *Runner) progress(n int64, keyvals ...any) {
	if r.ProgressEvery > 0 && n%r.ProgressEvery == 0 {
		r.logger().Info("progress", append([]any{"processed", n}, keyvals...)...)
	}
}
