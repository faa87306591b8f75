// Package location normalizes the location identifiers produced by a search
// path loader.
//
// A location is either a directory URI ("file:/abs/dir/pkg"), a bare
// filesystem path, or an archive entry URI ("jar:file:/abs/lib.jar!/pkg").
// Locations may be percent-encoded; Parse decodes them before any length
// based arithmetic is done on the resulting paths, so "%20" never shifts the
// offsets used to compute relative resource names.
package location
