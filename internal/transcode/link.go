package transcode

import (
	"errors"
	"os"
	"sync"
)

// Link connects the stdout of one process to the stdin of another through
// an OS pipe. The kernel buffer bounds the data in flight: a decoder that
// runs ahead of the encoder blocks on write until the encoder reads.
// Nothing is staged in memory or in a temporary file.
type Link struct {
	r, w *os.File
	once sync.Once
	err  error
}

// NewLink opens the pipe.
func NewLink() (*Link, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &Link{r: r, w: w}, nil
}

// Reader is the end handed to the consuming process as stdin.
func (l *Link) Reader() *os.File { return l.r }

// Writer is the end handed to the producing process as stdout.
func (l *Link) Writer() *os.File { return l.w }

// Close releases the parent's copies of both ends. It must be called once
// both processes have started, otherwise the consumer never sees EOF.
// Close is idempotent.
func (l *Link) Close() error {
	l.once.Do(func() {
		l.err = errors.Join(l.w.Close(), l.r.Close())
	})
	return l.err
}
