// Package fixtures builds resource trees for scanner tests. The same tree
// can be materialized as a real directory, a zip archive or an in-memory
// filesystem, which lets tests compare backends on identical content.
package fixtures

import (
	"archive/zip"
	"os"
	"path"
	"path/filepath"
	"sort"
	"testing"

	"github.com/vvka-141/pgscan/internal/files/filesystem"
)

// TreeBuilder provides a fluent API for describing a file tree.
//
// Example usage:
//
//	tree := fixtures.NewTree().
//	    AddFile("app/data/a.txt", "a").
//	    AddFile("app/data/sub/b.txt", "b")
//	root := tree.WriteDir(t, t.TempDir())
//	jar := tree.WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))
type TreeBuilder struct {
	files map[string]string // slash path -> content
}

// NewTree creates an empty tree.
func NewTree() *TreeBuilder {
	return &TreeBuilder{files: make(map[string]string)}
}

// AddFile adds a file at the slash-separated path.
func (b *TreeBuilder) AddFile(p, content string) *TreeBuilder {
	b.files[path.Clean(p)] = content
	return b
}

// Paths returns the file paths of the tree, sorted.
func (b *TreeBuilder) Paths() []string {
	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WriteDir writes the tree below dir and returns dir.
func (b *TreeBuilder) WriteDir(t testing.TB, dir string) string {
	t.Helper()

	for _, p := range b.Paths() {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(b.files[p]), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
	return dir
}

// WriteZip writes the tree as a zip archive at zipPath and returns zipPath.
// Only file entries are written; directories are implied by the names, as
// many jar tools do. Explicit directory entries are added when withDirs is
// set on WriteZipWithDirs.
func (b *TreeBuilder) WriteZip(t testing.TB, zipPath string) string {
	t.Helper()
	return b.writeZip(t, zipPath, false)
}

// WriteZipWithDirs is WriteZip with explicit "dir/" entries.
func (b *TreeBuilder) WriteZipWithDirs(t testing.TB, zipPath string) string {
	t.Helper()
	return b.writeZip(t, zipPath, true)
}

func (b *TreeBuilder) writeZip(t testing.TB, zipPath string, withDirs bool) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(zipPath), err)
	}
	out, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create %s: %v", zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	written := map[string]bool{}
	for _, p := range b.Paths() {
		if withDirs {
			for _, dir := range parents(p) {
				if written[dir] {
					continue
				}
				if _, err := zw.Create(dir + "/"); err != nil {
					t.Fatalf("zip dir %s: %v", dir, err)
				}
				written[dir] = true
			}
		}
		w, err := zw.Create(p)
		if err != nil {
			t.Fatalf("zip entry %s: %v", p, err)
		}
		if _, err := w.Write([]byte(b.files[p])); err != nil {
			t.Fatalf("zip write %s: %v", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return zipPath
}

// Memory builds an in-memory filesystem holding the tree below root.
func (b *TreeBuilder) Memory(root string) *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem(root)
	for _, p := range b.Paths() {
		mfs.AddFile(p, b.files[p])
	}
	return mfs
}

// parents lists the ancestor directories of p, outermost first.
func parents(p string) []string {
	var dirs []string
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		dirs = append([]string{dir}, dirs...)
	}
	return dirs
}

// AppData is the tree used by most scanner tests:
//
//	app/data/a.txt
//	app/data/sub/b.txt
//	app/other/x.txt
func AppData() *TreeBuilder {
	return NewTree().
		AddFile("app/data/a.txt", "a").
		AddFile("app/data/sub/b.txt", "b").
		AddFile("app/other/x.txt", "x")
}
