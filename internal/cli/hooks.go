package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports engine events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnScanStart(_ context.Context, kind string, units int) {
	h.logger.Debug("scan started", "kind", kind, "units", units)
}

func (h logHooks) OnUnitComplete(_ context.Context, kind, unit string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("unit failed", "kind", kind, "unit", unit, "duration", d, "err", err)
		return
	}
	h.logger.Debug("unit complete", "kind", kind, "unit", unit, "duration", d)
}

func (h logHooks) OnScanComplete(_ context.Context, kind string, failures int64, d time.Duration) {
	h.logger.Debug("scan finished", "kind", kind, "failures", failures, "duration", d)
}

func (h logHooks) OnIndexed(_ context.Context, root, mode string, archives, indexingErrors int, d time.Duration) {
	h.logger.Debug("corpus indexed", "root", root, "mode", mode, "archives", archives,
		"errors", indexingErrors, "duration", d)
}
