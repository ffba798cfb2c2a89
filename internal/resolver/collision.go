package resolver

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/handiism/flac2mp3/internal/model"
)

// ErrOutputCollision is matched by every *CollisionError.
var ErrOutputCollision = errors.New("output path collision")

// CollisionError reports two source files mapped to one output path, for
// example "Track.flac" and "Track.FLAC" in the same directory.
type CollisionError struct {
	Output string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("output path collision: %q and %q both map to %q", e.First, e.Second, e.Output)
}

func (e *CollisionError) Unwrap() error {
	return ErrOutputCollision
}

// claimSet tracks which source owns each output path. Keys are NFC
// normalized so composed and decomposed spellings of one name collide,
// and case folded when the target filesystem ignores case.
type claimSet struct {
	owners map[string]model.Job
	fold   *cases.Caser
}

func newClaimSet(foldCase bool) *claimSet {
	cs := &claimSet{owners: make(map[string]model.Job)}
	if foldCase {
		c := cases.Fold()
		cs.fold = &c
	}
	return cs
}

func (cs *claimSet) key(path string) string {
	key := norm.NFC.String(path)
	if cs.fold != nil {
		key = cs.fold.String(key)
	}
	return key
}

func (cs *claimSet) claim(job model.Job) error {
	key := cs.key(job.Output)
	if owner, ok := cs.owners[key]; ok && owner.Source.Path != job.Source.Path {
		return &CollisionError{
			Output: job.Output,
			First:  owner.Source.Path,
			Second: job.Source.Path,
		}
	}
	cs.owners[key] = job
	return nil
}
