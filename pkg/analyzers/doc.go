// Package analyzers contains the per-entry and per-directory analyses run by
// the cratescan commands.
//
// Compressed-mode analyzers implement [scan.EntryScanner] and receive the
// decoded text of one archive entry. Uncompressed-mode analyzers implement
// [scan.DirScanner] and usually run cargo inside one extracted package.
//
// Every analyzer is safe for concurrent use. Findings are written to the
// analyzer's Out writer one line at a time; shared state is guarded by the
// analyzer itself.
package analyzers
