package location

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// Kind tells directory roots and archive roots apart.
type Kind int

const (
	KindDirectory Kind = iota
	KindArchive
)

func (k Kind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "directory"
}

// Location is a decoded search root.
type Location struct {
	// Raw is the decoded URI without its trailing separator.
	Raw  string
	Kind Kind

	// Path is the filesystem directory of a directory root, in OS form.
	Path string

	// ArchivePath is the filesystem path of the archive file and EntryPath
	// the slash-separated directory inside it (no leading slash).
	ArchivePath string
	EntryPath   string
}

// Decode percent-decodes a location identifier. The result must be valid
// UTF-8. Unlike form decoding, '+' is kept as is.
func Decode(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", pgscan.ErrMalformedLocation, raw, err)
	}
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%w: %q does not decode to valid UTF-8", pgscan.ErrMalformedLocation, raw)
	}
	return decoded, nil
}

// Parse decodes and classifies a URI returned by a pgscan.Loader.
func Parse(raw string) (Location, error) {
	if scheme, ok := archiveScheme(raw); ok {
		return parseArchive(raw, scheme)
	}

	decoded, err := Decode(raw)
	if err != nil {
		return Location{}, err
	}
	decoded = StripTrailingSeparator(decoded)

	dirPath, err := stripFileScheme(decoded)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %w", pgscan.ErrMalformedLocation, raw, err)
	}

	return Location{
		Raw:  decoded,
		Kind: KindDirectory,
		Path: toOSPath(dirPath),
	}, nil
}

// The archive part and the entry part are split before decoding so that an
// encoded "!" inside a file name cannot be mistaken for the separator.
func parseArchive(raw, scheme string) (Location, error) {
	rest := strings.TrimPrefix(raw, scheme)
	archivePart, entryPart, found := strings.Cut(rest, pgscan.ArchiveEntrySeparator)
	if !found {
		trimmed := strings.TrimSuffix(rest, "!")
		if trimmed == rest {
			return Location{}, fmt.Errorf("%w: %q has no %q entry separator", pgscan.ErrMalformedLocation, raw, pgscan.ArchiveEntrySeparator)
		}
		archivePart = trimmed
	}

	archive, err := Decode(archivePart)
	if err != nil {
		return Location{}, err
	}
	entry, err := Decode(entryPart)
	if err != nil {
		return Location{}, err
	}
	entry = StripTrailingSeparator(StripLeadingSeparator(entry))

	archivePath, err := stripFileScheme(archive)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %w", pgscan.ErrMalformedLocation, raw, err)
	}
	if archivePath == "" {
		return Location{}, fmt.Errorf("%w: %q names no archive file", pgscan.ErrMalformedLocation, raw)
	}

	return Location{
		Raw:         scheme + archive + pgscan.ArchiveEntrySeparator + entry,
		Kind:        KindArchive,
		ArchivePath: toOSPath(archivePath),
		EntryPath:   entry,
	}, nil
}

// SearchRoot returns the part of the location shared by every resource of
// the root: the decoded URI with the package path suffix removed. It is used
// for diagnostics only.
func (l Location) SearchRoot(packagePath string) string {
	base := l.Raw
	if l.Kind == KindDirectory {
		base = l.Path
		packagePath = filepath.FromSlash(packagePath)
	}
	if packagePath != "" && strings.HasSuffix(base, packagePath) {
		base = base[:len(base)-len(packagePath)]
	}
	return StripTrailingSeparator(base)
}

// ValidatePackage rejects a dotted package with an empty segment: a
// leading, trailing or doubled '.'. The empty package names the top of
// every root and is valid.
func ValidatePackage(basePackage string) error {
	if basePackage == "" {
		return nil
	}
	for _, segment := range strings.Split(basePackage, ".") {
		if segment == "" {
			return fmt.Errorf("%w: package %q has an empty segment", pgscan.ErrResolution, basePackage)
		}
	}
	return nil
}

// PackagePath converts a dotted package ("com.example.pkg") to its
// slash-separated path ("com/example/pkg").
func PackagePath(basePackage string) string {
	return strings.ReplaceAll(basePackage, ".", "/")
}

// StripTrailingSeparator removes at most one trailing '/' or '\'.
func StripTrailingSeparator(s string) string {
	if strings.HasSuffix(s, "/") || strings.HasSuffix(s, "\\") {
		return s[:len(s)-1]
	}
	return s
}

// StripLeadingSeparator removes at most one leading '/' or '\'.
func StripLeadingSeparator(s string) string {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "\\") {
		return s[1:]
	}
	return s
}

// RelativeName drops the first baseLength bytes of absolute, strips one
// leading separator and normalizes back-slashes to forward slashes.
//
// The caller guarantees len(absolute) >= baseLength; RelativeName panics
// otherwise.
func RelativeName(absolute string, baseLength int) string {
	if baseLength < 0 || len(absolute) < baseLength {
		panic(fmt.Sprintf("location: base length %d exceeds path %q", baseLength, absolute))
	}
	name := StripLeadingSeparator(absolute[baseLength:])
	return strings.ReplaceAll(name, "\\", "/")
}

// FileURI builds the percent-encoded "file:" URI of a filesystem path.
func FileURI(path string) string {
	return pgscan.FileScheme + escapePath(toURIPath(path))
}

// ArchiveURI builds the percent-encoded URI of a directory inside an
// archive: "jar:file:/abs/lib.jar!/entry".
func ArchiveURI(archivePath, entryPath string) string {
	entry := StripLeadingSeparator(filepath.ToSlash(entryPath))
	return pgscan.JarScheme + FileURI(archivePath) + pgscan.ArchiveEntrySeparator + escapePath(entry)
}

func archiveScheme(raw string) (string, bool) {
	for _, scheme := range []string{pgscan.JarScheme, pgscan.ZipScheme} {
		if strings.HasPrefix(raw, scheme) {
			return scheme, true
		}
	}
	return "", false
}

// stripFileScheme removes "file:" and an empty or localhost authority.
// Any other authority names a remote host and is rejected.
func stripFileScheme(s string) (string, error) {
	if !strings.HasPrefix(s, pgscan.FileScheme) {
		return s, nil
	}
	s = strings.TrimPrefix(s, pgscan.FileScheme)
	if !strings.HasPrefix(s, "//") {
		return s, nil
	}
	host, rest, found := strings.Cut(s[2:], "/")
	if host != "" && !strings.EqualFold(host, "localhost") {
		return "", fmt.Errorf("remote file authority %q", host)
	}
	if !found {
		return "", nil
	}
	return "/" + rest, nil
}

// escapePath percent-encodes a slash path. '!' is encoded too because it
// separates the archive from the entry in archive URIs.
func escapePath(p string) string {
	escaped := (&url.URL{Path: p}).EscapedPath()
	return strings.ReplaceAll(escaped, "!", "%21")
}

func toURIPath(path string) string {
	p := filepath.ToSlash(path)
	if runtime.GOOS == "windows" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// toOSPath reverses toURIPath: "/C:/x" becomes `C:\x` on Windows.
func toOSPath(p string) string {
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
