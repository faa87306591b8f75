// Package filesystem provides the traversable roots a scan walks.
//
// A Directory is either a real directory tree (OSFileSystem), a directory
// inside a zip archive (ZipMounter), any fs.FS subtree (FSDirectory), or an
// in-memory tree used by tests (MemoryFileSystem). All of them expose the
// same Walk contract, so RegularFiles can enumerate the regular files of a
// root without knowing which backend it came from.
//
// Key interfaces:
//   - FileSystemProvider: opens directories and stats paths
//   - ArchiveMounter: opens an archive and positions a Directory inside it
//   - Directory: a root that can be traversed
//   - File: a visited entry with its metadata
package filesystem
