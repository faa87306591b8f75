package scanner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vvka-141/pgscan/internal/files/filesystem"
	"github.com/vvka-141/pgscan/internal/files/location"
	"github.com/vvka-141/pgscan/internal/logging"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// Scanner discovers resources of a package across search roots.
//
// A Scanner holds no per-scan state: every call builds its own root list and
// accumulator, so it is safe for concurrent use by multiple goroutines as
// long as the loader and filesystem providers are also thread-safe.
type Scanner struct {
	loader  pgscan.Loader
	fs      filesystem.FileSystemProvider
	mounter filesystem.ArchiveMounter
	logger  pgscan.Logger
	policy  pgscan.RootErrorPolicy
}

// NewScanner creates a scanner resolving roots through loader.
// Uses the OS filesystem and zip archives by default.
// Panics if loader is nil.
func NewScanner(loader pgscan.Loader) *Scanner {
	return NewScannerWithFS(loader, filesystem.NewOSFileSystem(), filesystem.NewZipMounter())
}

// NewScannerWithFS creates a scanner with custom directory and archive
// backends. This is primarily useful for testing with in-memory filesystems.
// Panics if any argument is nil.
func NewScannerWithFS(loader pgscan.Loader, fsProvider filesystem.FileSystemProvider, mounter filesystem.ArchiveMounter) *Scanner {
	if loader == nil {
		panic("loader cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if mounter == nil {
		panic("mounter cannot be nil")
	}
	return &Scanner{
		loader:  loader,
		fs:      fsProvider,
		mounter: mounter,
		logger:  logging.NewNullLogger(),
		policy:  pgscan.AbortOnRootError,
	}
}

// WithLogger returns a copy of the scanner that logs through logger.
func (s *Scanner) WithLogger(logger pgscan.Logger) *Scanner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	clone := *s
	clone.logger = logger
	return &clone
}

// WithRootErrorPolicy returns a copy of the scanner applying policy when a
// root fails to mount or walk.
func (s *Scanner) WithRootErrorPolicy(policy pgscan.RootErrorPolicy) *Scanner {
	clone := *s
	clone.policy = policy
	return &clone
}

// Scan returns every resource of basePackage, in root order then walk order.
func (s *Scanner) Scan(basePackage string) ([]pgscan.Resource, error) {
	return Collect(s, basePackage, pgscan.Identity)
}

// Roots resolves and decodes the search roots of basePackage without
// walking them.
func (s *Scanner) Roots(basePackage string) ([]location.Location, error) {
	if err := location.ValidatePackage(basePackage); err != nil {
		return nil, err
	}
	return s.roots(location.PackagePath(basePackage))
}

func (s *Scanner) roots(packagePath string) ([]location.Location, error) {
	uris, err := s.loader.Resources(packagePath)
	if err != nil {
		if errors.Is(err, pgscan.ErrResolution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", pgscan.ErrResolution, packagePath, err)
	}

	roots := make([]location.Location, 0, len(uris))
	for _, uri := range uris {
		root, err := location.Parse(uri)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// Collect scans basePackage (dotted form, e.g. "com.example.pkg") and
// returns the transform results it kept, preserving walk order within a
// root and root order across roots.
//
// A package with an empty segment ("..", "a..b", ".a") fails with
// pgscan.ErrResolution before the loader is queried. Loader failures,
// malformed root URIs and transform errors abort the scan
// and return no results. Archive and walk failures of a single root are
// handled according to the scanner's RootErrorPolicy; the results of a
// failing root are always discarded.
func Collect[R any](s *Scanner, basePackage string, transform pgscan.Transform[R]) ([]R, error) {
	if transform == nil {
		panic("transform cannot be nil")
	}

	if err := location.ValidatePackage(basePackage); err != nil {
		return nil, err
	}

	scanID := uuid.NewString()
	packagePath := location.PackagePath(basePackage)
	s.logger.Verbose("scan %s: package %q (path %q)", scanID, basePackage, packagePath)

	roots, err := s.roots(packagePath)
	if err != nil {
		return nil, err
	}

	results := make([]R, 0)
	var rootErrs []error
	for i, root := range roots {
		s.logger.Verbose("scan %s: root %d/%d %s %s (search root %s)",
			scanID, i+1, len(roots), root.Kind, root.Raw, root.SearchRoot(packagePath))

		found, err := collectRoot(s, root, transform)
		if err != nil {
			var terr *transformError
			if errors.As(err, &terr) {
				return nil, terr.err
			}

			rootErr := fmt.Errorf("root %s: %w", root.Raw, err)
			if s.policy == pgscan.AbortOnRootError {
				return results, rootErr
			}
			s.logger.Error("scan %s: skipping %v", scanID, rootErr)
			rootErrs = append(rootErrs, rootErr)
			continue
		}
		results = append(results, found...)
	}

	s.logger.Verbose("scan %s: %d result(s) from %d root(s)", scanID, len(results), len(roots))
	return results, errors.Join(rootErrs...)
}

// transformError carries a caller transform failure out of collectRoot so it
// can be returned unchanged.
type transformError struct {
	err error
}

func (e *transformError) Error() string { return e.err.Error() }
func (e *transformError) Unwrap() error { return e.err }

// collectRoot walks one root. Nothing it found is returned on error.
func collectRoot[R any](s *Scanner, root location.Location, transform pgscan.Transform[R]) (found []R, err error) {
	var (
		dir       filesystem.Directory
		newRecord func(path string, baseLength int) pgscan.Resource
	)

	switch root.Kind {
	case location.KindArchive:
		mounted, mountErr := s.mounter.Mount(root.ArchivePath, root.EntryPath)
		if mountErr != nil {
			return nil, mountErr
		}
		defer func() {
			if closeErr := mounted.Close(); closeErr != nil && err == nil {
				found, err = nil, fmt.Errorf("%w: close %s: %w", pgscan.ErrArchiveOpen, root.ArchivePath, closeErr)
			}
		}()
		dir = mounted
		newRecord = func(path string, baseLength int) pgscan.Resource {
			return pgscan.Resource{Location: path, Name: location.RelativeName(path, baseLength)}
		}

	default:
		opened, openErr := s.fs.Open(root.Path)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", pgscan.ErrWalk, root.Path, openErr)
		}
		dir = opened
		newRecord = func(path string, baseLength int) pgscan.Resource {
			return pgscan.Resource{Location: pgscan.FileScheme + path, Name: location.RelativeName(path, baseLength)}
		}
	}

	baseLength := len(dir.Path())
	if dir.Path() == "." {
		baseLength = 0
	}

	for file, walkErr := range filesystem.RegularFiles(dir) {
		if walkErr != nil {
			return nil, walkErr
		}

		resource := newRecord(file.Path(), baseLength)
		s.logger.Verbose("found resource: %s", resource)

		result, ok, transformErr := transform(resource)
		if transformErr != nil {
			return nil, &transformError{err: transformErr}
		}
		if ok {
			found = append(found, result)
		}
	}
	return found, nil
}
