package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/handiism/flac2mp3/internal/model"
)

func TestParseVorbisComments(t *testing.T) {
	input := strings.Join([]string{
		"title=Foo",
		"ARTIST=Bar",
		"ARTIST=Second Artist",
		"COMMENT=line one",
		"line two",
		"REPLAYGAIN_TRACK_GAIN=-7.5 dB",
		"TOTALTRACKS=12",
		"TRACKNUMBER=3",
		"DATE=",
		"",
	}, "\n")

	tags, err := ParseVorbisComments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVorbisComments: %v", err)
	}

	want := model.Tags{
		model.TagTitle:       "Foo",
		model.TagArtist:      "Bar",
		model.TagComment:     "line one\nline two",
		model.TagTrackTotal:  "12",
		model.TagTrackNumber: "3",
		model.TagDate:        "",
	}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags %v, want %d", len(tags), tags, len(want))
	}
	for f, v := range want {
		if got, ok := tags.Get(f); !ok || got != v {
			t.Errorf("%s = %q (present %v), want %q", f, got, ok, v)
		}
	}
}

func TestParseVorbisCommentsKeepsValueEquals(t *testing.T) {
	tags, err := ParseVorbisComments(strings.NewReader("TITLE=a=b\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tags.Value(model.TagTitle); got != "a=b" {
		t.Fatalf("TITLE = %q, want a=b", got)
	}
}

func TestParseVorbisCommentsMultiLineWithEquals(t *testing.T) {
	input := "COMMENT=line one\nmixed at 96k=true\nline three\nGENRE=Jazz\n"

	tags, err := ParseVorbisComments(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tags.Value(model.TagComment), "line one\nmixed at 96k=true\nline three"; got != want {
		t.Fatalf("COMMENT = %q, want %q", got, want)
	}
	if got := tags.Value(model.TagGenre); got != "Jazz" {
		t.Fatalf("GENRE = %q, want Jazz", got)
	}
}

func TestParseStreamLength(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    time.Duration
		wantErr error
	}{
		{"cd audio", "441000\n44100\n", 10 * time.Second, nil},
		{"hi-res", "288000\n96000\n", 3 * time.Second, nil},
		{"fractional", "66150\n44100\n", 1500 * time.Millisecond, nil},
		{"unknown samples", "0\n44100\n", 0, ErrUnknownLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStreamLength([]byte(tt.out))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseStreamLength = %v, %v; want %v", got, err, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "441000\n", "abc\n44100\n", "441000\nxyz\n"} {
		if _, err := ParseStreamLength([]byte(bad)); err == nil {
			t.Errorf("ParseStreamLength(%q) should fail", bad)
		}
	}
}

func TestMetaflacReadLength(t *testing.T) {
	bin := writeStub(t, "metaflac", `#!/bin/sh
if [ "$1" != "--show-total-samples" ] || [ "$2" != "--show-sample-rate" ]; then
  echo "unexpected args: $*" >&2
  exit 2
fi
echo 882000
echo 44100
`)

	got, err := NewMetaflac(bin).ReadLength(context.Background(), "/music/a.flac")
	if err != nil || got != 20*time.Second {
		t.Fatalf("ReadLength = %v, %v; want 20s", got, err)
	}
}

func writeStub(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestMetaflacReadTags(t *testing.T) {
	bin := writeStub(t, "metaflac", `#!/bin/sh
if [ "$1" != "--no-utf8-convert" ] || [ "$2" != "--export-tags-to=-" ]; then
  echo "unexpected args: $*" >&2
  exit 2
fi
echo "TITLE=Foo"
echo "ALBUM=Baz"
`)

	tags, err := NewMetaflac(bin).ReadTags(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("ReadTags: %v", err)
	}
	if tags.Value(model.TagTitle) != "Foo" || tags.Value(model.TagAlbum) != "Baz" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestMetaflacReadTagsReportsStderr(t *testing.T) {
	bin := writeStub(t, "metaflac", "#!/bin/sh\necho 'not a FLAC file' >&2\nexit 1\n")

	_, err := NewMetaflac(bin).ReadTags(context.Background(), "/music/a.flac")
	if err == nil || !strings.Contains(err.Error(), "not a FLAC file") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestMetaflacReadArtwork(t *testing.T) {
	bin := writeStub(t, "metaflac", `#!/bin/sh
case "$2" in
*nopic*) echo "no PICTURE block" >&2; exit 1 ;;
*empty*) exit 0 ;;
esac
printf 'PNGDATA'
`)
	mf := NewMetaflac(bin)

	data, err := mf.ReadArtwork(context.Background(), "/music/a.flac")
	if err != nil || string(data) != "PNGDATA" {
		t.Fatalf("ReadArtwork = %q, %v", data, err)
	}
	for _, name := range []string{"/music/nopic.flac", "/music/empty.flac"} {
		if _, err := mf.ReadArtwork(context.Background(), name); !errors.Is(err, ErrNoArtwork) {
			t.Errorf("%s: expected ErrNoArtwork, got %v", name, err)
		}
	}
}

func TestNewMetaflacDefaultsBinary(t *testing.T) {
	if got := NewMetaflac("  ").bin; got != "metaflac" {
		t.Fatalf("bin = %q", got)
	}
}
