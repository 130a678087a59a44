// Package pkg holds the libraries behind the cratescan command.
//
// # Overview
//
// Cratescan runs an analysis over every package of a local crates.io
// mirror. The mirror comes in two shapes: the compressed corpus of .crate
// archives, and an extracted copy of the newest version of each package.
//
//	crates/<shard>/<package>/<package>-<version>.crate
//	         ↓ [corpus] (all or latest view)
//	    archive paths
//	         ↓ [scan] Runner.ScanArchives + [filter] + [analyzers]
//	    findings + "load errors / scan errors / total"
//
//	crates/        ↓ [mirror] Extractor
//	src/<shard>/[<shard2>/]<package>/<package>-<version>/
//	         ↓ [mirror] Collect
//	    package directories
//	         ↓ [scan] Runner.ScanDirs + [analyzers]
//	    findings + "scan errors / total"
//
// # Packages
//
//   - [version]: semantic version parsing and ordering
//   - [corpus]: archive discovery and latest-version selection
//   - [mirror]: extraction and listing of the uncompressed mirror
//   - [scan]: the parallel scan engines and their reports
//   - [filter]: in-archive path predicates
//   - [analyzers]: the analyses run by the CLI
//   - [errors]: coded errors (INDEXING_ERROR, LOAD_ERROR, SCAN_ERROR, ...)
//   - [observability]: hooks for instrumentation
//   - [buildinfo]: version information set at build time
//
// # Quick Start
//
// Count Cargo.toml files that fail to parse in the newest release of every
// package:
//
//	c, err := corpus.CollectLatest("/data/crates")
//	if err != nil {
//	    return err
//	}
//	runner := scan.NewRunner(scan.WorkerCount(1), logger)
//	report := runner.ScanArchives(ctx, c.Paths, filter.FileName("Cargo.toml"),
//	    &analyzers.ManifestDeps{Out: os.Stdout})
//	report.Print(os.Stdout)
package pkg
