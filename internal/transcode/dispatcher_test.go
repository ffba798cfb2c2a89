package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/flac2mp3/internal/audio"
	ioutils "github.com/handiism/flac2mp3/internal/io"
	"github.com/handiism/flac2mp3/internal/model"
)

func TestRunDispatchesEveryJobExactlyOnce(t *testing.T) {
	env := newStubEnv(t)
	for i := range 7 {
		env.source(t, fmt.Sprintf("disc%d/%02d.flac", i%2, i), fmt.Sprintf("audio-%d", i))
	}
	plan := env.plan(t)

	var mu sync.Mutex
	successes := 0
	d := NewDispatcher(env.cfg, WithProgress(func(ev ProgressEvent) {
		if ev.Level == LevelSuccess && ev.Result != nil {
			mu.Lock()
			successes++
			mu.Unlock()
		}
	}))
	report := d.Run(context.Background(), plan.Jobs)

	if !report.OK() || report.Total() != 7 {
		t.Fatalf("report: %d/%d ok, failures %v", report.Succeeded(), report.Total(), report.Failed())
	}
	if successes != 7 {
		t.Fatalf("success events = %d, want 7", successes)
	}

	calls := env.encoderCalls(t)
	if len(calls) != 7 {
		t.Fatalf("encoder ran %d times, want 7", len(calls))
	}
	seen := make(map[string]bool)
	for _, c := range calls {
		if seen[c] {
			t.Fatalf("encoder ran twice for %s", c)
		}
		seen[c] = true
	}
	for _, out := range report.Outputs() {
		if !seen[out] {
			t.Fatalf("output %s was never encoded", out)
		}
	}

	done, failed, total := d.Progress()
	if done != 7 || failed != 0 || total != 7 {
		t.Fatalf("Progress() = %d, %d, %d", done, failed, total)
	}
}

func TestRunCopiesTags(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "a/b/x.flac", "payload")
	plan := env.plan(t)

	report := NewDispatcher(env.cfg).Run(context.Background(), plan.Jobs)
	if !report.OK() {
		t.Fatalf("failures: %v", report.Failed())
	}

	out := filepath.Join(env.outDir, "x.mp3")
	tags, err := audio.ReadID3(out)
	if err != nil {
		t.Fatalf("ReadID3: %v", err)
	}
	if got := tags.Value(model.TagTitle); got != "Foo" {
		t.Fatalf("TITLE = %q, want Foo", got)
	}
	if got := report.Results[0].Tags.Value(model.TagArtist); got != "Bar" {
		t.Fatalf("result ARTIST = %q, want Bar", got)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "payload") {
		t.Fatal("audio payload should follow the tag")
	}
}

func TestRunIsolatesEncoderFailure(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "good1.flac", "one")
	env.source(t, "bad.flac", "two")
	env.source(t, "good2.flac", "three")
	plan := env.plan(t)

	d := NewDispatcher(env.cfg)
	report := d.Run(context.Background(), plan.Jobs)

	if report.Succeeded() != 2 || len(report.Failed()) != 1 {
		t.Fatalf("succeeded %d, failed %d", report.Succeeded(), len(report.Failed()))
	}
	bad := resultFor(t, report, "bad.flac")
	if bad.Stage != model.StageEncode || !errors.Is(bad.Err, ErrEncode) {
		t.Fatalf("bad result: stage %v err %v", bad.Stage, bad.Err)
	}
	var se *StageError
	if !errors.As(bad.Err, &se) || !strings.Contains(se.Detail(), "lame: encoding failed") {
		t.Fatalf("expected stderr tail in error, got %v", bad.Err)
	}
	if _, err := os.Stat(bad.Job.Output); !os.IsNotExist(err) {
		t.Fatal("partial output should be removed")
	}
	for _, name := range []string{"good1.mp3", "good2.mp3"} {
		if _, err := os.Stat(filepath.Join(env.outDir, name)); err != nil {
			t.Fatalf("%s missing: %v", name, err)
		}
	}
	if _, failed, _ := d.Progress(); failed != 1 {
		t.Fatalf("failed counter = %d", failed)
	}
}

func TestRunReportsDecoderFailure(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "corrupt.flac", "junk")
	plan := env.plan(t)

	res := NewDispatcher(env.cfg).Run(context.Background(), plan.Jobs).Results[0]
	if res.Stage != model.StageDecode || !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("stage %v err %v", res.Stage, res.Err)
	}
	if !strings.Contains(res.Err.Error(), "not a FLAC file") {
		t.Fatalf("expected decoder stderr, got %v", res.Err)
	}
	if _, err := os.Stat(res.Job.Output); !os.IsNotExist(err) {
		t.Fatal("output of a failed decode should be removed")
	}
}

func TestRunBlamesEncoderThatExitsEarly(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "early.flac", strings.Repeat("x", 1<<20))
	plan := env.plan(t)

	res := NewDispatcher(env.cfg).Run(context.Background(), plan.Jobs).Results[0]
	if res.Stage != model.StageEncode {
		t.Fatalf("stage %v err %v, want encode", res.Stage, res.Err)
	}
}

func TestRunTagFailureKeepsAudio(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "notags.flac", "audio")
	plan := env.plan(t)

	res := NewDispatcher(env.cfg).Run(context.Background(), plan.Jobs).Results[0]
	if res.Stage != model.StageTags || !errors.Is(res.Err, ErrTags) {
		t.Fatalf("stage %v err %v", res.Stage, res.Err)
	}
	if _, err := os.Stat(res.Job.Output); err != nil {
		t.Fatalf("audio should remain after a tag failure: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "album/01.flac", "first")
	env.source(t, "album/02.flac", "second")
	plan := env.plan(t)
	d := NewDispatcher(env.cfg)

	snapshot := func() map[string]string {
		out := make(map[string]string)
		for _, job := range plan.Jobs {
			info, err := os.Stat(job.Output)
			if err != nil {
				t.Fatal(err)
			}
			tags, err := audio.ReadID3(job.Output)
			if err != nil {
				t.Fatal(err)
			}
			out[job.Rel] = fmt.Sprintf("%d %v", info.Size(), tags)
		}
		return out
	}

	if r := d.Run(context.Background(), plan.Jobs); !r.OK() {
		t.Fatalf("first run: %v", r.Failed())
	}
	first := snapshot()
	if r := d.Run(context.Background(), plan.Jobs); !r.OK() {
		t.Fatalf("second run: %v", r.Failed())
	}
	second := snapshot()

	for rel, v := range first {
		if second[rel] != v {
			t.Fatalf("%s changed between runs: %q vs %q", rel, v, second[rel])
		}
	}
	if calls := env.encoderCalls(t); len(calls) != 4 {
		t.Fatalf("encoder calls = %d, want 4 (no skip-if-exists)", len(calls))
	}
}

func TestRunCancelledContextStartsNothing(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "a.flac", "a")
	env.source(t, "b.flac", "b")
	plan := env.plan(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewDispatcher(env.cfg).Run(ctx, plan.Jobs)

	if report.Total() != 2 || report.Succeeded() != 0 {
		t.Fatalf("report %d/%d", report.Succeeded(), report.Total())
	}
	for _, res := range report.Results {
		if !errors.Is(res.Err, context.Canceled) || res.Stage != model.StagePrepare {
			t.Fatalf("stage %v err %v", res.Stage, res.Err)
		}
	}
	if calls := env.encoderCalls(t); len(calls) != 0 {
		t.Fatalf("encoder ran %d times after cancellation", len(calls))
	}
}

func TestTranscodeJobTimeout(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "slow.flac", "audio")
	env.cfg.JobTimeout = 200 * time.Millisecond
	plan := env.plan(t)

	start := time.Now()
	res := NewDispatcher(env.cfg).Transcode(context.Background(), plan.Jobs[0])
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", res.Err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Fatalf("timeout took %s", elapsed)
	}
}

func TestTranscodeMissingEncoder(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "a.flac", "a")
	env.cfg.Encoder.Path = filepath.Join(t.TempDir(), "no-such-lame")
	plan := env.plan(t)

	res := NewDispatcher(env.cfg).Transcode(context.Background(), plan.Jobs[0])
	if res.Stage != model.StagePrepare || !errors.Is(res.Err, ErrPrepare) {
		t.Fatalf("stage %v err %v", res.Stage, res.Err)
	}
}

type fakeTags struct {
	tags model.Tags
	err  error
}

func (f fakeTags) ReadTags(context.Context, string) (model.Tags, error) { return f.tags, f.err }

type failingWriter struct{}

func (failingWriter) SaveTags(string, model.Tags, *ioutils.Cover) (model.Tags, error) {
	return nil, errors.New("disk full")
}

func TestDispatcherUsesInjectedTagIO(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "a.flac", "a")
	env.cfg.Metaflac = filepath.Join(t.TempDir(), "no-such-metaflac")
	env.cfg.Artwork.Embed = false
	plan := env.plan(t)

	d := NewDispatcher(env.cfg, WithTagReader(fakeTags{tags: model.Tags{model.TagAlbum: "Injected"}}))
	res := d.Transcode(context.Background(), plan.Jobs[0])
	if !res.OK() {
		t.Fatalf("transcode failed: %v", res.Err)
	}
	if res.Tags.Value(model.TagAlbum) != "Injected" {
		t.Fatalf("tags = %v", res.Tags)
	}

	d = NewDispatcher(env.cfg,
		WithTagReader(fakeTags{tags: model.Tags{}}),
		WithTagWriter(failingWriter{}),
	)
	res = d.Transcode(context.Background(), plan.Jobs[0])
	if res.Stage != model.StageTags || !strings.Contains(res.Err.Error(), "disk full") {
		t.Fatalf("stage %v err %v", res.Stage, res.Err)
	}
}

type coverReader struct{ data []byte }

func (c coverReader) ReadArtwork(context.Context, string) ([]byte, error) { return c.data, nil }

func TestTranscodeRecordsArtworkWarning(t *testing.T) {
	env := newStubEnv(t)
	env.source(t, "a.flac", "a")
	plan := env.plan(t)

	var mu sync.Mutex
	var warnings []string
	d := NewDispatcher(env.cfg,
		WithArtworkReader(coverReader{data: []byte("not an image")}),
		WithProgress(func(ev ProgressEvent) {
			if ev.Level == LevelWarning {
				mu.Lock()
				warnings = append(warnings, ev.Message)
				mu.Unlock()
			}
		}),
	)
	res := d.Transcode(context.Background(), plan.Jobs[0])
	if !res.OK() {
		t.Fatalf("bad artwork must not fail the job: %v", res.Err)
	}
	if len(res.Warnings) != 1 || len(warnings) != 1 {
		t.Fatalf("warnings = %v / %v", res.Warnings, warnings)
	}
}

func TestConfigPoolSize(t *testing.T) {
	if got := (Config{Workers: 4}).PoolSize(); got != 4 {
		t.Fatalf("PoolSize = %d, want 4", got)
	}
	if got := (Config{}).PoolSize(); got < 1 {
		t.Fatalf("default PoolSize = %d", got)
	}
}
