package pgscan

import "fmt"

// Resource is a regular file discovered under a scanned package.
//
// Location identifies the physical file within its backend. For directory
// roots it is "file:" followed by the absolute filesystem path. For archive
// roots it is the path of the entry inside the archive, without a scheme.
//
// Name is the path relative to the scanned package, using forward slashes.
// It never starts with a separator.
type Resource struct {
	Location string `json:"location"`
	Name     string `json:"name"`
}

func (r Resource) String() string {
	return fmt.Sprintf("Resource{name=%s, location=%s}", r.Name, r.Location)
}

// Transform maps a discovered Resource to a caller value.
// Returning ok == false drops the resource from the result. A non-nil error
// aborts the scan and is returned to the caller unchanged.
type Transform[R any] func(Resource) (result R, ok bool, err error)

// Identity is the Transform that keeps every resource as is.
func Identity(r Resource) (Resource, bool, error) {
	return r, true, nil
}

// Filter builds a Transform keeping the resources accepted by keep.
func Filter(keep func(Resource) bool) Transform[Resource] {
	return func(r Resource) (Resource, bool, error) {
		return r, keep(r), nil
	}
}

// RootErrorPolicy decides what a scan does when a single search root fails
// to mount or to walk.
type RootErrorPolicy int

const (
	// AbortOnRootError stops the scan at the first failing root. Results of
	// roots that completed before it are returned together with the error.
	AbortOnRootError RootErrorPolicy = iota

	// SkipFailedRoots drops the failing root and keeps scanning. Every root
	// failure is returned, joined, alongside the collected results.
	SkipFailedRoots
)

func (p RootErrorPolicy) String() string {
	switch p {
	case AbortOnRootError:
		return "abort"
	case SkipFailedRoots:
		return "skip"
	default:
		return fmt.Sprintf("RootErrorPolicy(%d)", int(p))
	}
}

// ParseRootErrorPolicy parses the textual form used in configuration files
// and flags ("abort" or "skip"). The empty string selects AbortOnRootError.
func ParseRootErrorPolicy(s string) (RootErrorPolicy, error) {
	switch s {
	case "", "abort":
		return AbortOnRootError, nil
	case "skip":
		return SkipFailedRoots, nil
	default:
		return AbortOnRootError, fmt.Errorf("%w: unknown root error policy %q (expected abort or skip)", ErrInvalidConfig, s)
	}
}
