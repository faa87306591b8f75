package location

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "file:/x/app/data", "file:/x/app/data", false},
		{"space", "file:/tmp/my%20dir/app", "file:/tmp/my dir/app", false},
		{"utf8", "file:/tmp/%C3%A9t%C3%A9", "file:/tmp/été", false},
		{"plus kept", "file:/tmp/a+b", "file:/tmp/a+b", false},
		{"invalid escape", "file:/tmp/%zz", "", true},
		{"truncated escape", "file:/tmp/%2", "", true},
		{"invalid utf8", "file:/tmp/%ff", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, pgscan.ErrMalformedLocation) {
					t.Fatalf("Decode(%q) error = %v, want ErrMalformedLocation", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStripSeparators(t *testing.T) {
	tests := []struct {
		in, trailing, leading string
	}{
		{"/a/b/", "/a/b", "a/b/"},
		{`\a\b\`, `\a\b`, `a\b\`},
		{"a/b", "a/b", "a/b"},
		{"//a//", "//a/", "/a//"},
		{"", "", ""},
		{"/", "", ""},
	}

	for _, tt := range tests {
		if got := StripTrailingSeparator(tt.in); got != tt.trailing {
			t.Errorf("StripTrailingSeparator(%q) = %q, want %q", tt.in, got, tt.trailing)
		}
		if got := StripLeadingSeparator(tt.in); got != tt.leading {
			t.Errorf("StripLeadingSeparator(%q) = %q, want %q", tt.in, got, tt.leading)
		}
	}
}

func TestRelativeName(t *testing.T) {
	tests := []struct {
		absolute string
		base     string
		want     string
	}{
		{"/x/app/data/a.txt", "/x/app/data", "a.txt"},
		{"/x/app/data/sub/b.txt", "/x/app/data", "sub/b.txt"},
		{`C:\x\app\data\sub\b.txt`, `C:\x\app\data`, "sub/b.txt"},
		{"app/data/c.txt", "app/data", "c.txt"},
		{"c.txt", "", "c.txt"},
		{"/c.txt", "", "c.txt"},
	}

	for _, tt := range tests {
		if got := RelativeName(tt.absolute, len(tt.base)); got != tt.want {
			t.Errorf("RelativeName(%q, %d) = %q, want %q", tt.absolute, len(tt.base), got, tt.want)
		}
	}
}

func TestRelativeName_PanicsWhenBaseTooLong(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for base longer than path")
		}
	}()
	RelativeName("/x", 10)
}

func TestPackagePath(t *testing.T) {
	assert.Equal(t, "app/data", PackagePath("app.data"))
	assert.Equal(t, "com/example/pkg", PackagePath("com.example.pkg"))
	assert.Equal(t, "single", PackagePath("single"))
}

func TestValidatePackage(t *testing.T) {
	for _, pkg := range []string{"", "app", "app.data", "com.example.pkg"} {
		assert.NoError(t, ValidatePackage(pkg), pkg)
	}
	for _, pkg := range []string{".", "..", "a..b", ".a", "a."} {
		assert.ErrorIs(t, ValidatePackage(pkg), pgscan.ErrResolution, pkg)
	}
}

func TestParse_Directory(t *testing.T) {
	loc, err := Parse("file:/tmp/my%20dir/app/data/")
	require.NoError(t, err)

	assert.Equal(t, KindDirectory, loc.Kind)
	assert.Equal(t, "file:/tmp/my dir/app/data", loc.Raw)
	assert.Equal(t, filepath.FromSlash("/tmp/my dir/app/data"), loc.Path)
	assert.Equal(t, filepath.FromSlash("/tmp/my dir"), loc.SearchRoot("app/data"))
}

func TestParse_DirectoryForms(t *testing.T) {
	for _, raw := range []string{"file:/x/app", "file:///x/app", "file://localhost/x/app", "/x/app"} {
		loc, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, KindDirectory, loc.Kind, raw)
		assert.Equal(t, filepath.FromSlash("/x/app"), loc.Path, raw)
	}
}

func TestParse_Archive(t *testing.T) {
	loc, err := Parse("jar:file:/libs/my%20lib.jar!/app/data/")
	require.NoError(t, err)

	assert.Equal(t, KindArchive, loc.Kind)
	assert.Equal(t, filepath.FromSlash("/libs/my lib.jar"), loc.ArchivePath)
	assert.Equal(t, "app/data", loc.EntryPath)
	assert.Equal(t, "jar:file:/libs/my lib.jar!/app/data", loc.Raw)
	assert.Equal(t, "jar:file:/libs/my lib.jar!", loc.SearchRoot("app/data"))
}

func TestParse_ZipSchemeAndRootEntry(t *testing.T) {
	loc, err := Parse("zip:file:/libs/a.zip!/")
	require.NoError(t, err)
	assert.Equal(t, KindArchive, loc.Kind)
	assert.Equal(t, "", loc.EntryPath)

	loc, err = Parse("jar:file:/libs/a.zip!")
	require.NoError(t, err)
	assert.Equal(t, "", loc.EntryPath)
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"file:/x/%zz",
		"jar:file:/libs/a.jar",
		"jar:file:/libs/%zz.jar!/app",
		"jar:file:/libs/a.jar!/%",
		"jar:!/app",
		"file://server/share/x",
		"file://fileserver",
		"jar:file://server/libs/a.jar!/app",
	} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, pgscan.ErrMalformedLocation, raw)
	}
}

func TestURIRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "with space", "100%", "bang!")

	loc, err := Parse(FileURI(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, loc.Path)

	archive := filepath.Join(dir, "lib one.jar")
	loc, err = Parse(ArchiveURI(archive, "app/da ta"))
	require.NoError(t, err)
	assert.Equal(t, archive, loc.ArchivePath)
	assert.Equal(t, "app/da ta", loc.EntryPath)
}

func TestFileURI_Escapes(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("POSIX paths only")
	}
	assert.Equal(t, "file:/tmp/my%20dir", FileURI("/tmp/my dir"))
	assert.Equal(t, "jar:file:/tmp/a%21b.jar!/app/data", ArchiveURI("/tmp/a!b.jar", "/app/data"))
}
