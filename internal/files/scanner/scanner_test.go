package scanner_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgscan/internal/files/filesystem"
	"github.com/vvka-141/pgscan/internal/files/location"
	"github.com/vvka-141/pgscan/internal/files/scanner"
	"github.com/vvka-141/pgscan/internal/searchpath"
	"github.com/vvka-141/pgscan/internal/testing/fixtures"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// recordingLogger keeps every message for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	verbose  []string
	errorLog []string
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = append(l.verbose, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(format string, args ...interface{}) {}

func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog = append(l.errorLog, fmt.Sprintf(format, args...))
}

func staticRoots(uris ...string) pgscan.Loader {
	return pgscan.LoaderFunc(func(string) ([]string, error) {
		return uris, nil
	})
}

func names(resources []pgscan.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Name)
	}
	return out
}

func sortedNames(resources []pgscan.Resource) []string {
	out := names(resources)
	sort.Strings(out)
	return out
}

func TestNewScanner_NilLoader(t *testing.T) {
	assert.Panics(t, func() { scanner.NewScanner(nil) })
}

func TestNewScannerWithFS_NilArgs(t *testing.T) {
	loader := staticRoots()
	mfs := filesystem.NewMemoryFileSystem("/")
	mounter := filesystem.NewZipMounter()

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil loader", func() { scanner.NewScannerWithFS(nil, mfs, mounter) }},
		{"nil filesystem", func() { scanner.NewScannerWithFS(loader, nil, mounter) }},
		{"nil mounter", func() { scanner.NewScannerWithFS(loader, mfs, nil) }},
		{"nil logger", func() { scanner.NewScanner(loader).WithLogger(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestCollect_NilTransformPanics(t *testing.T) {
	s := scanner.NewScanner(staticRoots())
	assert.Panics(t, func() { _, _ = scanner.Collect[pgscan.Resource](s, "app", nil) })
}

func TestScan_UnknownPackageIsEmpty(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	s := scanner.NewScanner(searchpath.New(dir))

	got, err := s.Scan("no.such.pkg")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestScan_DirectoryRoot(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	s := scanner.NewScanner(searchpath.New(dir))

	got, err := s.Scan("app.data")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, sortedNames(got))
	for _, r := range got {
		assert.True(t, strings.HasPrefix(r.Location, pgscan.FileScheme), "location %q", r.Location)
		path := strings.TrimPrefix(r.Location, pgscan.FileScheme)
		assert.True(t, filepath.IsAbs(path), "location path %q should be absolute", path)
		assert.True(t, strings.HasSuffix(filepath.ToSlash(path), "/app/data/"+r.Name), "location %q does not end with name %q", path, r.Name)

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}
}

func TestScan_ArchiveRoot(t *testing.T) {
	for _, tc := range []struct {
		name  string
		write func(*fixtures.TreeBuilder, testing.TB, string) string
	}{
		{"implied directories", (*fixtures.TreeBuilder).WriteZip},
		{"explicit directories", (*fixtures.TreeBuilder).WriteZipWithDirs},
	} {
		t.Run(tc.name, func(t *testing.T) {
			jar := tc.write(fixtures.AppData(), t, filepath.Join(t.TempDir(), "lib.jar"))
			s := scanner.NewScanner(searchpath.New(jar))

			got, err := s.Scan("app.data")
			require.NoError(t, err)

			assert.ElementsMatch(t, []pgscan.Resource{
				{Location: "app/data/a.txt", Name: "a.txt"},
				{Location: "app/data/sub/b.txt", Name: "sub/b.txt"},
			}, got)
		})
	}
}

func TestScan_DirectoryAndArchiveAgree(t *testing.T) {
	tree := fixtures.NewTree().
		AddFile("com/example/one.sql", "1").
		AddFile("com/example/nested/two.sql", "2").
		AddFile("com/example/nested/deeper/three.sql", "3").
		AddFile("com/other/skip.sql", "x")

	dir := tree.WriteDir(t, t.TempDir())
	jar := tree.WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))

	fromDir, err := scanner.NewScanner(searchpath.New(dir)).Scan("com.example")
	require.NoError(t, err)
	fromJar, err := scanner.NewScanner(searchpath.New(jar)).Scan("com.example")
	require.NoError(t, err)

	assert.Equal(t, sortedNames(fromDir), sortedNames(fromJar))
	assert.Len(t, fromDir, 3)
}

func TestScan_DirectoryThenArchiveOrder(t *testing.T) {
	dir := fixtures.NewTree().AddFile("app/data/a.txt", "a").WriteDir(t, t.TempDir())
	jar := fixtures.NewTree().
		AddFile("app/data/b.txt", "b").
		AddFile("app/data/c.txt", "c").
		WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))

	s := scanner.NewScanner(searchpath.New(dir, jar))
	got, err := s.Scan("app.data")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "a.txt", got[0].Name)
	assert.True(t, strings.HasPrefix(got[0].Location, pgscan.FileScheme))
	assert.ElementsMatch(t, []string{"b.txt", "c.txt"}, names(got[1:]))
	for _, r := range got[1:] {
		assert.Equal(t, "app/data/"+r.Name, r.Location)
	}
}

func TestScan_DuplicateNamesAcrossRootsAreKept(t *testing.T) {
	tree := fixtures.NewTree().AddFile("app/data/a.txt", "a")
	first := tree.WriteDir(t, t.TempDir())
	second := tree.WriteDir(t, t.TempDir())

	got, err := scanner.NewScanner(searchpath.New(first, second)).Scan("app.data")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, got[0].Name, got[1].Name)
	assert.NotEqual(t, got[0].Location, got[1].Location)
}

func TestScan_EmptyPackageScansWholeRoot(t *testing.T) {
	jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))

	got, err := scanner.NewScanner(searchpath.New(jar)).Scan("")
	require.NoError(t, err)

	assert.Equal(t, []string{"app/data/a.txt", "app/data/sub/b.txt", "app/other/x.txt"}, sortedNames(got))
}

func TestScan_PercentEncodedDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "my dir")
	fixtures.AppData().WriteDir(t, base)
	root := filepath.Join(base, "app", "data")

	uri := location.FileURI(root)
	require.Contains(t, uri, "%20")

	got, err := scanner.NewScanner(staticRoots(uri)).Scan("app.data")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Contains(t, r.Location, "my dir")
		assert.NotContains(t, r.Location, "%20")
	}
}

func TestScan_PercentEncodedArchive(t *testing.T) {
	jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "my lib.jar"))

	got, err := scanner.NewScanner(staticRoots(location.ArchiveURI(jar, "app/data"))).Scan("app.data")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, sortedNames(got))
}

func TestScan_MalformedLocation(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	good := location.FileURI(filepath.Join(dir, "app", "data"))

	got, err := scanner.NewScanner(staticRoots(good, "file:/tmp/bad%zzpath")).Scan("app.data")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgscan.ErrMalformedLocation)
	assert.Nil(t, got)
}

func TestScan_ResolutionError(t *testing.T) {
	t.Run("loader failure", func(t *testing.T) {
		cause := errors.New("loader unavailable")
		loader := pgscan.LoaderFunc(func(string) ([]string, error) { return nil, cause })

		got, err := scanner.NewScanner(loader).Scan("app.data")
		assert.ErrorIs(t, err, pgscan.ErrResolution)
		assert.ErrorIs(t, err, cause)
		assert.Nil(t, got)
	})

	t.Run("corrupt archive on search path", func(t *testing.T) {
		jar := filepath.Join(t.TempDir(), "broken.jar")
		require.NoError(t, os.WriteFile(jar, []byte("not a zip"), 0o644))

		got, err := scanner.NewScanner(searchpath.New(jar)).Scan("app.data")
		assert.ErrorIs(t, err, pgscan.ErrResolution)
		assert.Nil(t, got)
	})

	t.Run("invalid package", func(t *testing.T) {
		dir := fixtures.AppData().WriteDir(t, t.TempDir())
		s := scanner.NewScanner(searchpath.New(dir))

		for _, pkg := range []string{".", "..", "a..b", ".a", "app.data.", "app..data"} {
			got, err := s.Scan(pkg)
			assert.ErrorIs(t, err, pgscan.ErrResolution, pkg)
			assert.Nil(t, got, pkg)

			_, err = s.Roots(pkg)
			assert.ErrorIs(t, err, pgscan.ErrResolution, pkg)
		}
	})

	t.Run("invalid package never reaches the loader", func(t *testing.T) {
		queried := false
		loader := pgscan.LoaderFunc(func(string) ([]string, error) {
			queried = true
			return nil, nil
		})

		_, err := scanner.NewScanner(loader).Scan("..")
		assert.ErrorIs(t, err, pgscan.ErrResolution)
		assert.False(t, queried)
	})
}

func TestCollect_TransformMapsResults(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	s := scanner.NewScanner(searchpath.New(dir))

	sizes, err := scanner.Collect(s, "app", func(r pgscan.Resource) (string, bool, error) {
		return strings.ToUpper(r.Name), true, nil
	})
	require.NoError(t, err)
	sort.Strings(sizes)
	assert.Equal(t, []string{"DATA/A.TXT", "DATA/SUB/B.TXT", "OTHER/X.TXT"}, sizes)
}

func TestCollect_FilterPreservesOrder(t *testing.T) {
	mfs := fixtures.NewTree().
		AddFile("app/a.sql", "").
		AddFile("app/b.txt", "").
		AddFile("app/c.sql", "").
		AddFile("app/d/e.sql", "").
		Memory("/cp")
	s := scanner.NewScannerWithFS(searchpath.NewWithFS(mfs, "/cp"), mfs, filesystem.NewZipMounter())

	all, err := s.Scan("app")
	require.NoError(t, err)

	sqlOnly, err := scanner.Collect(s, "app", pgscan.Filter(func(r pgscan.Resource) bool {
		return strings.HasSuffix(r.Name, ".sql")
	}))
	require.NoError(t, err)

	var want []pgscan.Resource
	for _, r := range all {
		if strings.HasSuffix(r.Name, ".sql") {
			want = append(want, r)
		}
	}
	assert.Equal(t, want, sqlOnly)
	assert.Equal(t, []string{"a.sql", "c.sql", "d/e.sql"}, names(sqlOnly))
}

func TestCollect_TransformErrorAbortsScan(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	s := scanner.NewScanner(searchpath.New(dir)).WithRootErrorPolicy(pgscan.SkipFailedRoots)
	boom := errors.New("boom")

	calls := 0
	got, err := scanner.Collect(s, "app", func(r pgscan.Resource) (pgscan.Resource, bool, error) {
		calls++
		if calls == 2 {
			return r, false, boom
		}
		return r, true, nil
	})

	assert.Same(t, boom, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, calls)
}

func TestCollect_TransformPanicPropagates(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	s := scanner.NewScanner(searchpath.New(dir))

	assert.PanicsWithValue(t, "transform exploded", func() {
		_, _ = scanner.Collect(s, "app", func(pgscan.Resource) (int, bool, error) {
			panic("transform exploded")
		})
	})
}

func TestScan_Idempotent(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))
	s := scanner.NewScanner(searchpath.New(dir, jar))

	first, err := s.Scan("app")
	require.NoError(t, err)
	second, err := s.Scan("app")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
}

func TestScan_ConcurrentUse(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))
	s := scanner.NewScanner(searchpath.New(dir, jar))

	var wg sync.WaitGroup
	counts := make([]int, 8)
	errs := make([]error, 8)
	for i := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Scan("app.data")
			counts[i], errs[i] = len(got), err
		}()
	}
	wg.Wait()

	for i := range counts {
		assert.NoError(t, errs[i])
		assert.Equal(t, 4, counts[i])
	}
}

func TestScan_SkipsNonRegularEntries(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/cp")
	mfs.AddFile("app/a.txt", "a")
	mfs.AddSpecial("app/socket", fs.ModeSocket)
	mfs.AddSpecial("app/dangling", fs.ModeSymlink)

	s := scanner.NewScannerWithFS(searchpath.NewWithFS(mfs, "/cp"), mfs, filesystem.NewZipMounter())
	got, err := s.Scan("app")
	require.NoError(t, err)

	assert.Equal(t, []pgscan.Resource{{Location: "file:/cp/app/a.txt", Name: "a.txt"}}, got)
}

func newFailingRootsScanner(t *testing.T) (*scanner.Scanner, *recordingLogger) {
	t.Helper()

	mfs := filesystem.NewMemoryFileSystem("/")
	mfs.AddFile("/first/app/a.txt", "a")
	mfs.AddFile("/broken/app/b.txt", "b")
	mfs.AddFile("/broken/app/locked/c.txt", "c")
	mfs.AddFile("/last/app/d.txt", "d")
	mfs.FailDirectory("/broken/app/locked", fs.ErrPermission)

	loader := searchpath.NewWithFS(mfs, "/first", "/broken", "/last")
	logger := &recordingLogger{}
	return scanner.NewScannerWithFS(loader, mfs, filesystem.NewZipMounter()).WithLogger(logger), logger
}

func TestScan_AbortOnRootError(t *testing.T) {
	s, _ := newFailingRootsScanner(t)

	got, err := s.Scan("app")

	require.Error(t, err)
	assert.ErrorIs(t, err, pgscan.ErrWalk)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "/broken/app")
	assert.Equal(t, []string{"a.txt"}, names(got), "completed roots are returned, the failing root is discarded")
}

func TestScan_SkipFailedRoots(t *testing.T) {
	s, logger := newFailingRootsScanner(t)

	got, err := s.WithRootErrorPolicy(pgscan.SkipFailedRoots).Scan("app")

	require.Error(t, err)
	assert.ErrorIs(t, err, pgscan.ErrWalk)
	assert.Equal(t, []string{"a.txt", "d.txt"}, names(got))
	assert.NotContains(t, names(got), "b.txt", "partial results of the failing root are discarded")
	assert.Len(t, logger.errorLog, 1)
}

func TestScan_ArchiveOpenError(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	good := location.FileURI(filepath.Join(dir, "app", "data"))
	missing := location.ArchiveURI(filepath.Join(t.TempDir(), "gone.jar"), "app/data")

	t.Run("abort", func(t *testing.T) {
		got, err := scanner.NewScanner(staticRoots(good, missing)).Scan("app.data")
		assert.ErrorIs(t, err, pgscan.ErrArchiveOpen)
		assert.Len(t, got, 2)
	})

	t.Run("skip", func(t *testing.T) {
		s := scanner.NewScanner(staticRoots(missing, good)).WithRootErrorPolicy(pgscan.SkipFailedRoots)
		got, err := s.Scan("app.data")
		assert.ErrorIs(t, err, pgscan.ErrArchiveOpen)
		assert.Equal(t, []string{"a.txt", "sub/b.txt"}, sortedNames(got))
	})

	t.Run("missing entry inside archive", func(t *testing.T) {
		jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))
		_, err := scanner.NewScanner(staticRoots(location.ArchiveURI(jar, "no/such"))).Scan("no.such")
		assert.ErrorIs(t, err, pgscan.ErrArchiveOpen)
	})
}

func TestRoots(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	jar := fixtures.AppData().WriteZip(t, filepath.Join(t.TempDir(), "lib.jar"))
	s := scanner.NewScanner(searchpath.New(dir, filepath.Join(t.TempDir(), "missing"), jar))

	roots, err := s.Roots("app.data")
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, location.KindDirectory, roots[0].Kind)
	assert.Equal(t, filepath.Join(dir, "app", "data"), roots[0].Path)
	assert.Equal(t, location.KindArchive, roots[1].Kind)
	assert.Equal(t, jar, roots[1].ArchivePath)
	assert.Equal(t, "app/data", roots[1].EntryPath)
}

func TestScan_LogsScanID(t *testing.T) {
	dir := fixtures.AppData().WriteDir(t, t.TempDir())
	logger := &recordingLogger{}
	s := scanner.NewScanner(searchpath.New(dir)).WithLogger(logger)

	_, err := s.Scan("app.data")
	require.NoError(t, err)

	require.NotEmpty(t, logger.verbose)
	first := logger.verbose[0]
	require.True(t, strings.HasPrefix(first, "scan "), first)
	scanID := strings.Fields(first)[1]
	scanID = strings.TrimSuffix(scanID, ":")
	for _, msg := range logger.verbose {
		if strings.HasPrefix(msg, "scan ") {
			assert.Contains(t, msg, scanID)
		}
	}
	assert.Contains(t, strings.Join(logger.verbose, "\n"), "found resource")
}
