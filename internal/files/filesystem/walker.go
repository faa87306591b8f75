package filesystem

import (
	"fmt"
	"io/fs"
	"iter"

	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// RegularFiles lazily enumerates the regular files under dir, in the
// directory's walk order. Directories, devices, sockets and dangling links
// are skipped.
//
// A traversal failure is yielded once as an error wrapping pgscan.ErrWalk,
// after which the sequence ends. Files yielded before the failure have
// already been delivered; discarding them is up to the consumer.
func RegularFiles(dir Directory) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		stopped := false
		err := dir.Walk(func(file File, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !file.Info().Mode().IsRegular() {
				return nil
			}
			if !yield(file, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(nil, fmt.Errorf("%w: %s: %w", pgscan.ErrWalk, dir.Path(), err))
		}
	}
}
