//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalError reports resource exhaustion: the inotify watch limit or the
// file descriptor limits.
func isFatalError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
