package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryFile implements File interface for in-memory entries
type memoryFile struct {
	absPath string
	relPath string
	info    fs.FileInfo
	readErr error // set on directories that fail to list
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

// Walk visits entries depth-first with siblings sorted by name, the same
// order filepath.WalkDir produces for a real tree.
func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	err := d.walk(d.absPath, fn)
	if err == fs.SkipAll {
		return nil
	}
	return err
}

func (d *memoryDirectory) walk(dirPath string, fn func(File, error) error) error {
	entry := d.fs.entry(dirPath)
	if err := fn(d.relativeTo(entry), nil); err != nil {
		return err
	}
	if entry.readErr != nil {
		return fn(nil, fmt.Errorf("read directory %s: %w", dirPath, entry.readErr))
	}

	for _, child := range d.fs.children(dirPath) {
		if child.info.IsDir() {
			if err := d.walk(child.absPath, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(d.relativeTo(child), nil); err != nil {
			return err
		}
	}
	return nil
}

func (d *memoryDirectory) relativeTo(f *memoryFile) File {
	rel := "."
	if f.absPath != d.absPath {
		rel = strings.TrimPrefix(f.absPath, strings.TrimSuffix(d.absPath, "/")+"/")
	}
	return &memoryFile{absPath: f.absPath, relPath: rel, info: f.info}
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing
type MemoryFileSystem struct {
	files map[string]*memoryFile // map of absolute path -> entry
	root  string                 // root directory path
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.files[root] = newMemoryDir(root)
	return mfs
}

func newMemoryDir(dirPath string) *memoryFile {
	return &memoryFile{
		absPath: dirPath,
		info: &memoryFileInfo{
			name:    path.Base(dirPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
		},
	}
}

// AddFile adds a regular file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(path string, content string) {
	mfs.AddFileWithTime(path, content, time.Now())
}

// AddFileWithTime adds a regular file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	mfs.addEntry(filePath, int64(len(content)), 0644, modTime)
}

// AddSpecial adds a non-regular entry (device, socket, dangling link) that
// walks report but RegularFiles skips.
func (mfs *MemoryFileSystem) AddSpecial(filePath string, mode fs.FileMode) {
	mfs.addEntry(filePath, 0, mode, time.Now())
}

// FailDirectory makes walks report err when they reach the directory at
// dirPath, simulating a permission error or a directory removed mid-walk.
func (mfs *MemoryFileSystem) FailDirectory(dirPath string, err error) {
	absPath := mfs.abs(dirPath)
	mfs.ensureDirectoriesExist(absPath + "/x")
	mfs.files[absPath].readErr = err
}

func (mfs *MemoryFileSystem) addEntry(filePath string, size int64, mode fs.FileMode, modTime time.Time) {
	absPath := mfs.abs(filePath)
	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    size,
			mode:    mode,
			modTime: modTime,
		},
	}
	mfs.ensureDirectoriesExist(absPath)
}

// abs maps a path onto the virtual filesystem: relative paths are joined
// with the root, absolute ones are used as is.
func (mfs *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == filePath {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}
	mfs.files[dir] = newMemoryDir(dir)
	mfs.ensureDirectoriesExist(dir)
}

func (mfs *MemoryFileSystem) entry(absPath string) *memoryFile {
	if f, ok := mfs.files[absPath]; ok {
		return f
	}
	return newMemoryDir(absPath)
}

// children returns the direct children of dirPath sorted by name
func (mfs *MemoryFileSystem) children(dirPath string) []*memoryFile {
	var entries []*memoryFile
	for p, f := range mfs.files {
		if p != dirPath && path.Dir(p) == dirPath {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].info.Name() < entries[j].info.Name()
	})
	return entries
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.abs(openPath)

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, fmt.Errorf("directory not found: %s", openPath)
	}
	if !file.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}

	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	file, exists := mfs.files[mfs.abs(statPath)]
	if !exists {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return file.info, nil
}
