// Package searchpath implements pgscan.Loader over an ordered list of search
// path entries, the way a class path works: each entry is a directory or a
// zip/jar archive, and a package path is found in every entry that holds a
// directory of that name.
package searchpath
