package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/handiism/flac2mp3/internal/transcode"
)

// progressPrinter writes dispatcher events as they arrive from workers.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func newProgressPrinter(w io.Writer, verbose bool) *progressPrinter {
	return &progressPrinter{w: w, verbose: verbose}
}

func (p *progressPrinter) print(event transcode.ProgressEvent) {
	if event.Level == transcode.LevelVerbose && !p.verbose {
		return
	}

	prefix := ""
	switch event.Level {
	case transcode.LevelError:
		prefix = "❌ "
	case transcode.LevelWarning:
		prefix = "⚠️  "
	case transcode.LevelSuccess:
		prefix = "✅ "
	case transcode.LevelInfo:
		prefix = "ℹ️  "
	default:
		prefix = "   "
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, prefix+event.Message)
}
