package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/flac2mp3/internal/model"
)

var (
	// ErrNoArtwork is returned when a FLAC file carries no picture block.
	ErrNoArtwork = errors.New("no embedded artwork")

	// ErrUnknownLength is returned when STREAMINFO does not record the
	// number of samples.
	ErrUnknownLength = errors.New("unknown stream length")
)

// Metaflac reads Vorbis comments and pictures through the metaflac tool.
type Metaflac struct {
	bin string
}

// NewMetaflac returns a reader that runs bin. An empty bin means
// "metaflac" from PATH.
func NewMetaflac(bin string) *Metaflac {
	if strings.TrimSpace(bin) == "" {
		bin = "metaflac"
	}
	return &Metaflac{bin: bin}
}

// ReadTags returns the Tag Set fields present in the file at path.
func (m *Metaflac) ReadTags(ctx context.Context, path string) (model.Tags, error) {
	out, err := m.run(ctx, "--no-utf8-convert", "--export-tags-to=-", path)
	if err != nil {
		return nil, fmt.Errorf("read tags from %s: %w", path, err)
	}
	return ParseVorbisComments(bytes.NewReader(out))
}

// ReadArtwork returns the first picture block of the file at path.
func (m *Metaflac) ReadArtwork(ctx context.Context, path string) ([]byte, error) {
	out, err := m.run(ctx, "--export-picture-to=-", path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w in %s: %v", ErrNoArtwork, path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoArtwork, path)
	}
	return out, nil
}

// ReadLength returns the playing time recorded in the STREAMINFO block of
// the file at path.
func (m *Metaflac) ReadLength(ctx context.Context, path string) (time.Duration, error) {
	out, err := m.run(ctx, "--show-total-samples", "--show-sample-rate", path)
	if err != nil {
		return 0, fmt.Errorf("read stream info from %s: %w", path, err)
	}
	return ParseStreamLength(out)
}

// ParseStreamLength converts the output of
// metaflac --show-total-samples --show-sample-rate into a duration.
func ParseStreamLength(out []byte) (time.Duration, error) {
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, fmt.Errorf("unexpected stream info %q", strings.TrimSpace(string(out)))
	}
	samples, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("total samples: %w", err)
	}
	rate, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sample rate: %w", err)
	}
	if samples == 0 || rate == 0 {
		return 0, ErrUnknownLength
	}
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second)), nil
}

func (m *Metaflac) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, m.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", m.bin, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", m.bin, err)
	}
	return out, nil
}

// ParseVorbisComments parses "KEY=VALUE" lines as printed by
// metaflac --export-tags-to. Lines without a field name free of spaces
// continue the value of the previous comment. Keys outside the Tag Set are dropped, and the
// first value of a repeated key wins.
func ParseVorbisComments(r io.Reader) (model.Tags, error) {
	tags := make(model.Tags)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		current model.TagField
		open    bool
	)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || !startsComment(key) {
			if open {
				tags[current] += "\n" + line
			}
			continue
		}

		field, known := model.ParseTagField(key)
		open = known && !tags.Has(field)
		if open {
			current = field
			tags[field] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse vorbis comments: %w", err)
	}
	return tags, nil
}

// startsComment reports whether key begins a new comment rather than
// continuing a multi-line value. Field names with spaces are legal but no
// tagger writes them, while prose in a comment often has both a space and
// an '=' sign.
func startsComment(key string) bool {
	if _, known := model.ParseTagField(key); known {
		return true
	}
	return validFieldName(key) && !strings.ContainsRune(key, ' ')
}

// validFieldName applies the Vorbis comment field name rule: printable
// ASCII 0x20 through 0x7D, excluding '='.
func validFieldName(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < 0x20 || c > 0x7d || c == '=' {
			return false
		}
	}
	return true
}
