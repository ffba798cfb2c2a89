package transcode

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/handiism/flac2mp3/internal/model"
)

func TestStageErrorMatchesSentinels(t *testing.T) {
	tests := []struct {
		stage model.Stage
		want  error
	}{
		{model.StagePrepare, ErrPrepare},
		{model.StageDecode, ErrDecode},
		{model.StageEncode, ErrEncode},
		{model.StageTags, ErrTags},
	}
	for _, tt := range tests {
		err := error(&StageError{Stage: tt.stage, Path: "/a.flac", Err: fs.ErrPermission})
		if !errors.Is(err, tt.want) {
			t.Errorf("%v: errors.Is(%v) = false", tt.stage, tt.want)
		}
		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("%v: underlying error not matched", tt.stage)
		}
	}
	if errors.Is(&StageError{Stage: model.StageDecode, Err: errors.New("x")}, ErrEncode) {
		t.Error("decode error must not match ErrEncode")
	}
}

func TestStageErrorMessage(t *testing.T) {
	err := &StageError{
		Stage:  model.StageEncode,
		Path:   "/music/a.flac",
		Err:    errors.New("exit status 1"),
		Stderr: "warming up\nlame: bad sample rate\n\n",
	}
	if got := err.Detail(); got != "exit status 1 (lame: bad sample rate)" {
		t.Fatalf("Detail() = %q", got)
	}
	if !strings.HasPrefix(err.Error(), "encode /music/a.flac: ") {
		t.Fatalf("Error() = %q", err.Error())
	}

	plain := &StageError{Stage: model.StageTags, Path: "/x.mp3", Err: errors.New("boom")}
	if plain.Detail() != "boom" {
		t.Fatalf("Detail() without stderr = %q", plain.Detail())
	}
}

func TestTailBufferKeepsEnd(t *testing.T) {
	buf := newTailBuffer(8)
	buf.Write([]byte("abc"))
	buf.Write([]byte("defgh"))
	if got := buf.String(); got != "abcdefgh" {
		t.Fatalf("got %q", got)
	}
	buf.Write([]byte("ij"))
	if got := buf.String(); got != "cdefghij" {
		t.Fatalf("got %q", got)
	}
	n, err := buf.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := buf.String(); got != "23456789" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkCloseIsIdempotent(t *testing.T) {
	link, err := NewLink()
	if err != nil {
		t.Fatal(err)
	}
	if err := link.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := link.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
