package scan

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kind names the engine that produced a Report.
type Kind string

const (
	KindCompressed   Kind = "compressed"
	KindUncompressed Kind = "uncompressed"
)

// counters are shared by all workers of one run. Each is updated with a
// single atomic add; no invariant spans two of them.
type counters struct {
	scanned    atomic.Int64
	loadErrors atomic.Int64
	scanErrors atomic.Int64
}

// Report is the outcome of one run.
type Report struct {
	RunID      uuid.UUID
	Kind       Kind
	Scanned    int64 // entries (compressed) or directories (uncompressed) handed to the scanner
	LoadErrors int64 // compressed only
	ScanErrors int64
	Total      int // units in the input list
	Duration   time.Duration
}

func newReport(kind Kind, total int) *Report {
	return &Report{RunID: uuid.New(), Kind: kind, Total: total}
}

// collect copies the counters into the report. Call after all workers joined.
func (r *Report) collect(c *counters, start time.Time) {
	r.Scanned = c.scanned.Load()
	r.LoadErrors = c.loadErrors.Load()
	r.ScanErrors = c.scanErrors.Load()
	r.Duration = time.Since(start)
}

// Failures returns the number of units that ended with an error.
func (r *Report) Failures() int64 { return r.LoadErrors + r.ScanErrors }

// Failed reports whether any unit ended with an error.
func (r *Report) Failed() bool { return r.Failures() > 0 }

// Print writes the summary as "<label>: <count>" lines. Compressed runs
// print load errors, scan errors and total; uncompressed runs omit load
// errors.
func (r *Report) Print(w io.Writer) error {
	var err error
	if r.Kind == KindCompressed {
		_, err = fmt.Fprintf(w, "load errors: %d\nscan errors: %d\ntotal: %d\n", r.LoadErrors, r.ScanErrors, r.Total)
	} else {
		_, err = fmt.Fprintf(w, "scan errors: %d\ntotal: %d\n", r.ScanErrors, r.Total)
	}
	return err
}
