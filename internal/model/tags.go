package model

import "strings"

// TagField names a Vorbis comment field that is carried across the
// conversion.
type TagField string

const (
	TagTitle       TagField = "TITLE"
	TagArtist      TagField = "ARTIST"
	TagAlbum       TagField = "ALBUM"
	TagAlbumArtist TagField = "ALBUMARTIST"
	TagDate        TagField = "DATE"
	TagTrackNumber TagField = "TRACKNUMBER"
	TagTrackTotal  TagField = "TRACKTOTAL"
	TagDiscNumber  TagField = "DISCNUMBER"
	TagGenre       TagField = "GENRE"
	TagComment     TagField = "COMMENT"
)

// TagFields is the fixed Tag Set in the order tags are reported.
var TagFields = []TagField{
	TagTitle,
	TagArtist,
	TagAlbum,
	TagAlbumArtist,
	TagDate,
	TagTrackNumber,
	TagTrackTotal,
	TagDiscNumber,
	TagGenre,
	TagComment,
}

// ParseTagField maps a Vorbis comment key to a TagField. Keys are case
// insensitive. TOTALTRACKS is accepted as an alias for TRACKTOTAL.
func ParseTagField(key string) (TagField, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "TOTALTRACKS" {
		return TagTrackTotal, true
	}
	for _, f := range TagFields {
		if string(f) == key {
			return f, true
		}
	}
	return "", false
}

// Tags holds the values of the Tag Set present in a file.
type Tags map[TagField]string

// Get returns the value of f and whether it is present.
func (t Tags) Get(f TagField) (string, bool) {
	v, ok := t[f]
	return v, ok
}

// Value returns the value of f or an empty string.
func (t Tags) Value(f TagField) string {
	return t[f]
}

// Has reports whether f is present.
func (t Tags) Has(f TagField) bool {
	_, ok := t[f]
	return ok
}

// Len returns the number of present fields.
func (t Tags) Len() int {
	return len(t)
}
