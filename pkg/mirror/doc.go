// Package mirror manages the uncompressed mirror of a crate corpus.
//
// The mirror is produced by [Extractor], which unpacks the newest archive of
// every package, and read back by [Collect], which lists one directory per
// extracted package version.
//
// # Layout
//
// The mirror keeps the shard directories of the compressed corpus. Packages
// with one- or two-character names live directly below shard "1" or "2";
// every other package has a second shard level:
//
//	out/1/a/a-0.1.0/
//	out/2/ab/ab-1.2.3/
//	out/3/s/syn/syn-2.0.0/
//	out/se/rd/serde/serde-1.0.193/
//
// The layout is dictated by the registry and must not be changed.
package mirror
