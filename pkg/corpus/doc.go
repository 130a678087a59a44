// Package corpus indexes a directory tree of package archives.
//
// # Layout
//
// A corpus root holds one compressed archive per package version, each inside
// a directory named after its package:
//
//	root/[shard dirs/]<package>/<package>-<version>.crate
//
// Shard directories above the package directory are allowed at any depth;
// the indexer only looks at each archive's parent directory name and file
// name.
//
// # Views
//
// Two views of a corpus are available, selected by [Versions]:
//
//   - [All]: every archive under the root.
//   - [Latest]: exactly one archive per package, the one whose version ranks
//     highest under semantic version precedence (see package version).
//
// Both views are built with a single walk of the tree:
//
//	c, err := corpus.Collect("/data/crates", corpus.Latest)
//	if err != nil {
//	    return err // root unreadable
//	}
//	for _, e := range c.Errors {
//	    logger.Warn("skipped", "err", e)
//	}
//	fmt.Println(len(c.Paths), "archives")
//
// # Indexing errors
//
// An archive whose file name does not encode a valid version, or a directory
// that cannot be read, is reported in [Corpus.Errors] with the
// INDEXING_ERROR code and left out of the view. Only a root that cannot be
// walked at all fails the whole collection.
package corpus
