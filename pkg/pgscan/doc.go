// Package pgscan defines the public types shared by the pgscan packages:
// the Resource record produced by a scan, the Transform applied to each
// discovered resource, the Loader that locates search roots, the Logger
// used for diagnostics, and the sentinel errors and exit codes callers
// classify failures with.
package pgscan
