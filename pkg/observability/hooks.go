// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about corpus indexing and scan execution.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScanHooks(&myScanHooks{})
//	    observability.SetCorpusHooks(&myCorpusHooks{})
//	    // ... run application
//	}
//
// Scan runners call hooks to emit events:
//
//	observability.Scan().OnScanStart(ctx, "compressed", len(paths))
//	// ... scan every unit ...
//	observability.Scan().OnScanComplete(ctx, "compressed", failures, duration)
//
// Hooks on [ScanHooks] are invoked concurrently from worker goroutines and
// must be safe for concurrent use.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scan Hooks
// =============================================================================

// ScanHooks receives events from the scan runners.
type ScanHooks interface {
	// OnScanStart records the start of a run over units scan units.
	OnScanStart(ctx context.Context, kind string, units int)

	// OnUnitComplete records one archive or directory finishing. err is the
	// failure that ended the unit early, or nil.
	OnUnitComplete(ctx context.Context, kind, unit string, duration time.Duration, err error)

	// OnScanComplete records the end of a run.
	OnScanComplete(ctx context.Context, kind string, failures int64, duration time.Duration)
}

// =============================================================================
// Corpus Hooks
// =============================================================================

// CorpusHooks receives events from corpus indexing.
type CorpusHooks interface {
	// OnIndexed records a completed corpus walk.
	OnIndexed(ctx context.Context, root, mode string, archives, indexingErrors int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScanHooks is a no-op implementation of ScanHooks.
type NoopScanHooks struct{}

func (NoopScanHooks) OnScanStart(context.Context, string, int)                             {}
func (NoopScanHooks) OnUnitComplete(context.Context, string, string, time.Duration, error) {}
func (NoopScanHooks) OnScanComplete(context.Context, string, int64, time.Duration)         {}

// NoopCorpusHooks is a no-op implementation of CorpusHooks.
type NoopCorpusHooks struct{}

func (NoopCorpusHooks) OnIndexed(context.Context, string, string, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scanHooks   ScanHooks   = NoopScanHooks{}
	corpusHooks CorpusHooks = NoopCorpusHooks{}
	hooksMu     sync.RWMutex
)

// SetScanHooks registers custom scan hooks.
// This should be called once at application startup before any scan begins.
func SetScanHooks(h ScanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scanHooks = h
	}
}

// SetCorpusHooks registers custom corpus hooks.
// This should be called once at application startup before any indexing.
func SetCorpusHooks(h CorpusHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		corpusHooks = h
	}
}

// Scan returns the registered scan hooks.
func Scan() ScanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scanHooks
}

// Corpus returns the registered corpus hooks.
func Corpus() CorpusHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return corpusHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scanHooks = NoopScanHooks{}
	corpusHooks = NoopCorpusHooks{}
}
