package transcode

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	ioutils "github.com/handiism/flac2mp3/internal/io"
)

// LockFileName is created in the output root while a run holds it.
const LockFileName = ".flac2mp3.lock"

// ErrLocked means another run is writing to the same output root.
var ErrLocked = errors.New("output directory is in use by another flac2mp3 run")

// RunLock is an advisory lock on an output root.
type RunLock struct {
	path string
	lock *flock.Flock
}

// AcquireRunLock creates outputRoot if needed and locks it without
// blocking.
func AcquireRunLock(outputRoot string) (*RunLock, error) {
	if err := ioutils.EnsureDir(outputRoot); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	path := filepath.Join(outputRoot, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, outputRoot)
	}
	return &RunLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file.
func (l *RunLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return ioutils.RemovePartial(l.path)
}
