package filesystem_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgscan/internal/files/filesystem"
	"github.com/vvka-141/pgscan/internal/testing/fixtures"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

func TestRegularFiles_SkipsNonRegular(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/p")
	mfs.AddFile("a.txt", "a")
	mfs.AddSpecial("dev", fs.ModeDevice)
	mfs.AddSpecial("sock", fs.ModeSocket)
	mfs.AddSpecial("dangling", fs.ModeSymlink)
	mfs.AddFile("sub/b.txt", "b")

	dir, err := mfs.Open("/p")
	require.NoError(t, err)

	assert.Equal(t, []string{"/p/a.txt", "/p/sub/b.txt"}, collectPaths(t, dir))
}

func TestRegularFiles_Deterministic(t *testing.T) {
	root := fixtures.AppData().WriteDir(t, t.TempDir())

	dir, err := filesystem.NewOSFileSystem().Open(root)
	require.NoError(t, err)

	first := collectPaths(t, dir)
	second := collectPaths(t, dir)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		filepath.Join(root, "app", "data", "a.txt"),
		filepath.Join(root, "app", "data", "sub", "b.txt"),
		filepath.Join(root, "app", "other", "x.txt"),
	}, first)
}

func TestRegularFiles_WalkError(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/p")
	mfs.AddFile("a.txt", "a")
	mfs.AddFile("broken/b.txt", "b")
	boom := errors.New("permission denied")
	mfs.FailDirectory("broken", boom)

	dir, err := mfs.Open("/p")
	require.NoError(t, err)

	var files []string
	var errs []error
	for f, err := range filesystem.RegularFiles(dir) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f.Path())
	}

	assert.Equal(t, []string{"/p/a.txt"}, files)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], pgscan.ErrWalk)
	assert.ErrorIs(t, errs[0], boom)
}

func TestRegularFiles_EarlyBreak(t *testing.T) {
	mfs := fixtures.AppData().Memory("/p")
	dir, err := mfs.Open("/p")
	require.NoError(t, err)

	count := 0
	for range filesystem.RegularFiles(dir) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestFSDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"app/data/a.txt":     {Data: []byte("a")},
		"app/data/sub/b.txt": {Data: []byte("b")},
	}

	dir, err := filesystem.NewFSDirectory(fsys, "/app/data/")
	require.NoError(t, err)
	assert.Equal(t, "app/data", dir.Path())

	var rel []string
	for f, err := range filesystem.RegularFiles(dir) {
		require.NoError(t, err)
		rel = append(rel, f.RelativePath())
	}
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, rel)

	_, err = filesystem.NewFSDirectory(fsys, "app/missing")
	assert.Error(t, err)
	_, err = filesystem.NewFSDirectory(fsys, "../escape")
	assert.Error(t, err)
}
