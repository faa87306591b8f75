package searchpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pgscan/internal/files/filesystem"
	"github.com/vvka-141/pgscan/internal/files/location"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// archiveExtensions are the file extensions treated as zip containers.
var archiveExtensions = map[string]bool{
	".zip": true,
	".jar": true,
}

// IsArchive reports whether the entry name designates a zip container.
func IsArchive(entry string) bool {
	return archiveExtensions[strings.ToLower(filepath.Ext(entry))]
}

// Loader resolves package paths against a fixed list of entries.
// It is immutable and safe for concurrent use.
type Loader struct {
	entries []string
	fs      filesystem.FileSystemProvider
}

// New creates a loader over entries, in search order. Relative entries are
// resolved against the working directory when queried.
func New(entries ...string) *Loader {
	return NewWithFS(filesystem.NewOSFileSystem(), entries...)
}

// NewWithFS creates a loader that stats directory entries through fsProvider.
// Archives are always read from the OS filesystem.
// Panics if fsProvider is nil.
func NewWithFS(fsProvider filesystem.FileSystemProvider, entries ...string) *Loader {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Loader{
		entries: append([]string(nil), entries...),
		fs:      fsProvider,
	}
}

// Parse builds a loader from an OS path list ("a:b.jar" on Unix,
// "a;b.jar" on Windows). Empty elements are dropped.
func Parse(list string) *Loader {
	var entries []string
	for _, entry := range filepath.SplitList(list) {
		if strings.TrimSpace(entry) != "" {
			entries = append(entries, entry)
		}
	}
	return New(entries...)
}

// FromEnv builds the process-default loader from pgscan.SearchPathEnv,
// falling back to the working directory when the variable is unset.
func FromEnv() *Loader {
	if list := os.Getenv(pgscan.SearchPathEnv); list != "" {
		return Parse(list)
	}
	return New(".")
}

// Entries returns a copy of the configured entries.
func (l *Loader) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Resources implements pgscan.Loader.
func (l *Loader) Resources(packagePath string) ([]string, error) {
	packagePath = strings.Trim(filepath.ToSlash(packagePath), "/")
	if packagePath != "" && !fs.ValidPath(path.Clean(packagePath)) {
		return nil, fmt.Errorf("%w: invalid package path %q", pgscan.ErrResolution, packagePath)
	}

	var uris []string
	for i, entry := range l.entries {
		uri, found, err := l.lookup(entry, packagePath)
		if err != nil {
			return nil, fmt.Errorf("%w: search path entry %d (%q): %w", pgscan.ErrResolution, i, entry, err)
		}
		if found {
			uris = append(uris, uri)
		}
	}
	return uris, nil
}

func (l *Loader) lookup(entry, packagePath string) (string, bool, error) {
	if strings.TrimSpace(entry) == "" {
		return "", false, errors.New("empty entry")
	}
	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return "", false, err
	}

	info, err := l.fs.Stat(absEntry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	if info.IsDir() {
		dir := filepath.Join(absEntry, filepath.FromSlash(packagePath))
		dirInfo, err := l.fs.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
				return "", false, nil
			}
			// ENOTDIR when a path component is a file
			if isNotDir(err) {
				return "", false, nil
			}
			return "", false, err
		}
		if !dirInfo.IsDir() {
			return "", false, nil
		}
		return location.FileURI(dir), true, nil
	}

	if !IsArchive(absEntry) {
		return "", false, errors.New("not a directory or a zip/jar archive")
	}
	found, err := filesystem.ContainsDirectory(absEntry, packagePath)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	return location.ArchiveURI(absEntry, packagePath), true, nil
}
