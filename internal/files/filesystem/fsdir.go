package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// fsFile implements File interface for entries of an fs.FS
type fsFile struct {
	absPath string // path within the fs.FS (always uses forward slashes)
	relPath string
	info    fs.FileInfo
}

func (f *fsFile) Path() string         { return f.absPath }
func (f *fsFile) RelativePath() string { return f.relPath }
func (f *fsFile) Info() FileInfo       { return f.info }

// FSDirectory is a Directory rooted at a subtree of an fs.FS. Zip archives
// are walked through it, since *zip.Reader implements fs.FS.
type FSDirectory struct {
	fsys fs.FS
	root string // "." or a clean slash path without leading slash
}

// NewFSDirectory returns the directory at root inside fsys. Root uses
// forward slashes; leading and trailing slashes are ignored and the empty
// string names the top of fsys.
func NewFSDirectory(fsys fs.FS, root string) (*FSDirectory, error) {
	root = strings.Trim(strings.ReplaceAll(root, "\\", "/"), "/")
	if root == "" {
		root = "."
	}
	root = path.Clean(root)
	if !fs.ValidPath(root) {
		return nil, fmt.Errorf("invalid directory path %q", root)
	}

	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	return &FSDirectory{fsys: fsys, root: root}, nil
}

// Path returns the root inside the fs.FS, "." for the top.
func (d *FSDirectory) Path() string { return d.root }

func (d *FSDirectory) Walk(fn func(File, error) error) error {
	return fs.WalkDir(d.fsys, d.root, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fn(nil, err)
		}

		info, err := entry.Info()
		if err != nil {
			return fn(nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err))
		}

		return fn(&fsFile{
			absPath: filePath,
			relPath: d.relative(filePath),
			info:    info,
		}, nil)
	})
}

func (d *FSDirectory) relative(filePath string) string {
	if d.root == "." {
		return filePath
	}
	if filePath == d.root {
		return "."
	}
	return strings.TrimPrefix(filePath, d.root+"/")
}
