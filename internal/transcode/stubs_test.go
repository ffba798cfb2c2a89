package transcode

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/handiism/flac2mp3/internal/model"
	"github.com/handiism/flac2mp3/internal/resolver"
)

const flacStub = `#!/bin/sh
for last; do :; done
case "$(basename "$last")" in
corrupt*) echo "flac: ERROR: not a FLAC file" >&2; exit 1 ;;
esac
cat "$last"
`

const lameStub = `#!/bin/sh
for last; do :; done
echo "$last" >> "@LOG@"
case "$(basename "$last")" in
bad*) echo partial > "$last"; cat >/dev/null; echo "lame: encoding failed" >&2; exit 1 ;;
early*) echo "lame: unsupported input" >&2; exit 1 ;;
slow*) exec sleep 5 ;;
esac
cat > "$last"
`

const metaflacStub = `#!/bin/sh
for last; do :; done
case "$1" in
--export-picture-to=*) exit 1 ;;
--show-total-samples)
	case "$(basename "$last")" in
	02*) echo 0 ;;
	*) echo 441000 ;;
	esac
	echo 44100
	exit 0 ;;
esac
case "$(basename "$last")" in
notags*) echo "metaflac: cannot read metadata" >&2; exit 1 ;;
esac
echo "TITLE=Foo"
echo "ARTIST=Bar"
`

type stubEnv struct {
	cfg    Config
	log    string
	src    string
	outDir string
}

func newStubEnv(t *testing.T) *stubEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	base := t.TempDir()
	bin := filepath.Join(base, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	log := filepath.Join(base, "lame.log")

	write := func(name, script string) string {
		path := filepath.Join(bin, name)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
		return path
	}

	cfg := DefaultConfig()
	cfg.Decoder.Path = write("flac", flacStub)
	cfg.Encoder.Path = write("lame", strings.ReplaceAll(lameStub, "@LOG@", log))
	cfg.Metaflac = write("metaflac", metaflacStub)
	cfg.Workers = 3

	return &stubEnv{
		cfg:    cfg,
		log:    log,
		src:    filepath.Join(base, "music"),
		outDir: filepath.Join(base, "out"),
	}
}

// source creates a fake FLAC file under the music directory.
func (e *stubEnv) source(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.src, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *stubEnv) plan(t *testing.T) *model.Plan {
	t.Helper()
	plan, err := resolver.New(resolver.Options{OutputRoot: e.outDir}).Resolve([]string{e.src})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return plan
}

// encoderCalls returns the output paths the lame stub was invoked with.
func (e *stubEnv) encoderCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Fields(string(data))
}

func resultFor(t *testing.T, report *model.Report, name string) model.Result {
	t.Helper()
	for _, res := range report.Results {
		if filepath.Base(res.Job.Source.Path) == name {
			return res
		}
	}
	t.Fatalf("no result for %s", name)
	return model.Result{}
}
