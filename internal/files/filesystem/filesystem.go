package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// File represents an entry visited during a walk.
type File interface {
	// Path returns the location of the entry within its backend: an absolute
	// OS path for directory trees, a slash-separated internal path for
	// archives and fs.FS trees.
	Path() string

	// RelativePath returns the slash-separated path relative to the walked
	// directory.
	RelativePath() string

	// Info returns entry metadata. For symbolic links that resolve, Info
	// describes the link target.
	Info() FileInfo
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the location of the directory within its backend
	Path() string

	// Walk traverses the directory tree in lexical order, calling fn for each
	// file and directory, the root included. Read failures are passed to fn
	// with a nil File. If fn returns an error, walking stops and Walk returns
	// it, except for fs.SkipAll which stops the walk and returns nil.
	Walk(fn func(File, error) error) error
}

// MountedDirectory is a Directory backed by an open resource that must be
// released once the walk is over.
type MountedDirectory interface {
	Directory
	io.Closer
}

// FileSystemProvider opens real directories for walking.
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}

// ArchiveMounter exposes the inside of an archive container as a Directory.
type ArchiveMounter interface {
	// Mount opens the archive at archivePath and returns the directory at
	// internalPath inside it. The caller must Close the result.
	Mount(archivePath, internalPath string) (MountedDirectory, error)
}
