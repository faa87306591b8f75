package pgscan

// Loader locates the search roots exposing a package path.
//
// Resources returns one URI per root that contains path (a slash-separated
// package path such as "com/example/pkg"). A URI is either a directory
// location ("file:/abs/dir/com/example/pkg") or an archive entry
// ("jar:file:/abs/lib.jar!/com/example/pkg"). URIs may be percent-encoded.
// A path found nowhere yields an empty slice and a nil error.
type Loader interface {
	Resources(path string) ([]string, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(path string) ([]string, error)

// Resources calls f(path).
func (f LoaderFunc) Resources(path string) ([]string, error) {
	return f(path)
}
