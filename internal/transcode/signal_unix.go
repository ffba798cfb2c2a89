//go:build unix

package transcode

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// brokenPipe reports whether err is a process killed by SIGPIPE.
func brokenPipe(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == unix.SIGPIPE
}
