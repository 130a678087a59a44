package analyzers

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratescan/pkg/scan"
)

// printer serializes finding lines from concurrent workers.
type printer struct {
	mu sync.Mutex
}

func (p *printer) printf(w io.Writer, format string, args ...any) {
	if w == nil {
		w = os.Stdout
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

var (
	_ scan.EntryScanner = (*ManifestDeps)(nil)
	_ scan.EntryScanner = (*BuildDeps)(nil)
	_ scan.EntryScanner = (*Links)(nil)
	_ scan.EntryScanner = TOMLCompare{}
	_ scan.EntryScanner = (*StringContinuation)(nil)
	_ scan.EntryScanner = (*Find)(nil)
	_ scan.DirScanner   = (*Tree)(nil)
	_ scan.DirScanner   = (*LockCompare)(nil)
	_ scan.DirScanner   = (*Metadata)(nil)
)
