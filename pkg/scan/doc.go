// Package scan runs analysis callbacks over a corpus in parallel.
//
// # Engines
//
// Two engines share one [Runner]:
//
//   - [Runner.ScanArchives] streams every gzip-compressed tar archive in a
//     path list, passes entries accepted by a [filter.Filter] to an
//     [EntryScanner] as decoded text, and counts scanned entries, load errors
//     and scan errors.
//   - [Runner.ScanDirs] calls a [DirScanner] once per directory of an
//     extracted mirror and counts scan errors.
//
// Both return a [Report]; [Report.Print] writes the fixed-format summary.
//
//	r := scan.NewRunner(scan.WorkerCount(2), logger)
//	report := r.ScanArchives(ctx, c.Paths, filter.FileName("Cargo.toml"),
//	    scan.EntryScannerFunc(func(path, contents string) error {
//	        // parse contents
//	        return nil
//	    }))
//	report.Print(os.Stdout)
//
// # Failure isolation
//
// A scan unit is one archive or one directory, processed start to finish by
// a single worker. A load error or a scan error ends the current unit only:
// remaining entries of that archive are skipped, other units are unaffected,
// and the run always covers the whole path list. Nothing is retried.
//
// # Concurrency
//
// Runner.Workers bounds the number of units in flight. Scanners are invoked
// concurrently and must synchronize any state they share. Counters are
// atomic and read in full only after every worker has finished; progress
// lines read them opportunistically.
//
// A run is not cancellable: ctx is passed to observability hooks only.
package scan
