package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"

	ioutils "github.com/handiism/flac2mp3/internal/io"
	"github.com/handiism/flac2mp3/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be copied from the source, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify copies the value read from the source file.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each field of the Tag Set.
//
// Fields missing from Actions are left unchanged.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Actions: map[model.TagField]TagEditAction{
//	        model.TagTitle:   TagModify,
//	        model.TagArtist:  TagModify,
//	        model.TagComment: TagEmpty,
//	    },
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are written.
	ModifyTags bool

	Actions map[model.TagField]TagEditAction
}

// DefaultTagConfig copies every field of the Tag Set.
func DefaultTagConfig() *TagConfig {
	return TagConfigFor(model.TagFields)
}

// TagConfigFor copies the given fields and leaves the rest unchanged.
func TagConfigFor(fields []model.TagField) *TagConfig {
	actions := make(map[model.TagField]TagEditAction, len(fields))
	for _, f := range fields {
		actions[f] = TagModify
	}
	return &TagConfig{ModifyTags: true, Actions: actions}
}

// id3Frames maps simple text fields to their ID3v2.4 frame IDs.
var id3Frames = map[model.TagField]string{
	model.TagTitle:       "TIT2",
	model.TagArtist:      "TPE1",
	model.TagAlbum:       "TALB",
	model.TagAlbumArtist: "TPE2",
	model.TagDate:        "TDRC",
	model.TagDiscNumber:  "TPOS",
	model.TagGenre:       "TCON",
}

// Tagger writes the Tag Set to MP3 files.
//
// Tagger uses the id3v2 library to write:
//   - Title, Artist, Album Artist, Album, Date, Genre
//   - Track number (with total as "n/total"), Disc number
//   - Comment
//   - Cover Art (attached picture)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes tags, and cover when non-nil, to the MP3 at path. It
// returns the fields that were written. Values are copied verbatim.
func (t *Tagger) SaveTags(path string, tags model.Tags, cover *ioutils.Cover) (model.Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	written := make(model.Tags)
	if t.config.ModifyTags {
		t.updateTextFrames(tag, tags, written)
	}
	if cover != nil {
		updateArtwork(tag, cover)
	}

	if err := tag.Save(); err != nil {
		return nil, fmt.Errorf("save tags to %s: %w", path, err)
	}
	return written, nil
}

func (t *Tagger) action(f model.TagField) TagEditAction {
	a, ok := t.config.Actions[f]
	if !ok {
		return TagDoNotModify
	}
	return a
}

// updateTextFrames updates frames based on configuration and records
// copied values in written.
func (t *Tagger) updateTextFrames(tag *id3v2.Tag, tags model.Tags, written model.Tags) {
	for f, id := range id3Frames {
		switch t.action(f) {
		case TagEmpty:
			tag.DeleteFrames(id)
		case TagModify:
			if v, ok := tags.Get(f); ok {
				tag.AddTextFrame(id, id3v2.EncodingUTF8, v)
				written[f] = v
			}
		}
	}

	// TRCK carries both the number and the total.
	switch t.action(model.TagTrackNumber) {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		if num, ok := tags.Get(model.TagTrackNumber); ok {
			value := num
			written[model.TagTrackNumber] = num
			if total, ok := tags.Get(model.TagTrackTotal); ok && t.action(model.TagTrackTotal) == TagModify && !strings.Contains(num, "/") {
				value = num + "/" + total
				written[model.TagTrackTotal] = total
			}
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, value)
		}
	}

	switch t.action(model.TagComment) {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if v, ok := tags.Get(model.TagComment); ok {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        v,
			})
			written[model.TagComment] = v
		}
	}
}

// updateArtwork embeds cover art as the front cover picture frame.
func updateArtwork(tag *id3v2.Tag, cover *ioutils.Cover) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	mime := cover.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     cover.Data,
	})
}

// ReadID3 returns the Tag Set fields present in the MP3 at path.
func ReadID3(path string) (model.Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer tag.Close()

	tags := make(model.Tags)
	for f, id := range id3Frames {
		if v := tag.GetTextFrame(id).Text; v != "" {
			tags[f] = v
		}
	}
	if trck := tag.GetTextFrame("TRCK").Text; trck != "" {
		num, total, found := strings.Cut(trck, "/")
		tags[model.TagTrackNumber] = num
		if found && total != "" {
			tags[model.TagTrackTotal] = total
		}
	}
	for _, frame := range tag.GetFrames(tag.CommonID("Comments")) {
		if cf, ok := frame.(id3v2.CommentFrame); ok && cf.Text != "" {
			tags[model.TagComment] = cf.Text
			break
		}
	}
	return tags, nil
}

// HasArtwork reports whether the MP3 at path carries an attached picture.
func HasArtwork(path string) (bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer tag.Close()
	return len(tag.GetFrames(tag.CommonID("Attached picture"))) > 0, nil
}
