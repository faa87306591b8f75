// Package scanner collects the resources of a package across every search
// root a pgscan.Loader reports.
//
// The scanner package is responsible for:
//   - Decoding and classifying the root URIs returned by the loader
//   - Mounting archive roots and opening directory roots
//   - Walking each root for regular files and naming them relative to the
//     scanned package
//   - Applying the caller's transform and accumulating the kept results
//
// The scanner is filesystem-agnostic through filesystem.FileSystemProvider
// and filesystem.ArchiveMounter, enabling production use with the OS
// filesystem and testing with in-memory filesystems.
package scanner
