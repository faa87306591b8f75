package filesystem

import (
	"archive/zip"
	"errors"
	"fmt"

	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// archiveDirectory is a directory inside an open zip archive.
type archiveDirectory struct {
	*FSDirectory
	archivePath string
	reader      *zip.ReadCloser
}

// Close releases the archive. It is safe to call more than once.
func (d *archiveDirectory) Close() error {
	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	return err
}

// ArchivePath returns the filesystem path of the mounted archive.
func (d *archiveDirectory) ArchivePath() string { return d.archivePath }

// ZipMounter implements ArchiveMounter for zip containers (zip, jar).
//
// Every Mount opens its own handle on the archive, so concurrent mounts of
// the same file never share state and no locking is needed.
type ZipMounter struct{}

// NewZipMounter creates a new zip archive mounter
func NewZipMounter() *ZipMounter {
	return &ZipMounter{}
}

func (m *ZipMounter) Mount(archivePath, internalPath string) (MountedDirectory, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pgscan.ErrArchiveOpen, archivePath, err)
	}

	dir, err := NewFSDirectory(reader, internalPath)
	if err != nil {
		closeErr := reader.Close()
		return nil, fmt.Errorf("%w: %s: %w", pgscan.ErrArchiveOpen, archivePath, errors.Join(err, closeErr))
	}

	return &archiveDirectory{
		FSDirectory: dir,
		archivePath: archivePath,
		reader:      reader,
	}, nil
}

// ContainsDirectory reports whether the archive at archivePath has a
// directory at internalPath.
func ContainsDirectory(archivePath, internalPath string) (bool, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return false, err
	}
	defer reader.Close()

	if _, err := NewFSDirectory(reader, internalPath); err != nil {
		return false, nil
	}
	return true, nil
}
