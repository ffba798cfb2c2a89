package transcode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/flac2mp3/internal/model"
)

var (
	ErrPrepare = errors.New("prepare failed")
	ErrDecode  = errors.New("decode failed")
	ErrEncode  = errors.New("encode failed")

	// ErrTags means the audio was written but the tags were not.
	ErrTags = errors.New("tag copy failed")
)

// StageError is the failure of one job. It matches the sentinel of its
// stage with errors.Is as well as the underlying error.
type StageError struct {
	Stage  model.Stage
	Path   string
	Err    error
	Stderr string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Stage, e.Path, e.Detail())
}

// Detail returns the underlying error followed by the last line the tool
// wrote to stderr, if any.
func (e *StageError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if line := lastLine(e.Stderr); line != "" {
		b.WriteString(" (")
		b.WriteString(line)
		b.WriteString(")")
	}
	return b.String()
}

func (e *StageError) Unwrap() []error {
	return []error{stageSentinel(e.Stage), e.Err}
}

func stageSentinel(s model.Stage) error {
	switch s {
	case model.StageDecode:
		return ErrDecode
	case model.StageEncode:
		return ErrEncode
	case model.StageTags:
		return ErrTags
	default:
		return ErrPrepare
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
