package analyzers

import "io"

// Find prints the display path of every entry it is handed. Pair it with a
// glob filter to search a corpus for file names.
type Find struct {
	Out io.Writer
	p   printer
}

// ScanEntry prints path.
func (f *Find) ScanEntry(path, _ string) error {
	f.p.printf(f.Out, "%s", path)
	return nil
}
