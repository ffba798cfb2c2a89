package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/flac2mp3/internal/audio"
	ioutils "github.com/handiism/flac2mp3/internal/io"
	"github.com/handiism/flac2mp3/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a transcode progress update. Result is set on
// the event that finishes a job.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Result  *model.Result
}

// TagReader reads the Tag Set from a source file.
type TagReader interface {
	ReadTags(ctx context.Context, path string) (model.Tags, error)
}

// ArtworkReader extracts embedded cover art from a source file.
type ArtworkReader interface {
	ReadArtwork(ctx context.Context, path string) ([]byte, error)
}

// LengthReader reads the playing time of a source file.
type LengthReader interface {
	ReadLength(ctx context.Context, path string) (time.Duration, error)
}

// TagWriter writes tags and optional cover art to an output file and
// returns the fields written.
type TagWriter interface {
	SaveTags(path string, tags model.Tags, cover *ioutils.Cover) (model.Tags, error)
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithProgress registers a callback for progress events. It is called
// from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(d *Dispatcher) { d.onProgress = fn }
}

// WithTagReader replaces the metaflac tag reader.
func WithTagReader(r TagReader) Option {
	return func(d *Dispatcher) { d.tagReader = r }
}

// WithArtworkReader replaces the metaflac picture reader.
func WithArtworkReader(r ArtworkReader) Option {
	return func(d *Dispatcher) { d.artReader = r }
}

// WithLengthReader replaces the metaflac stream info reader.
func WithLengthReader(r LengthReader) Option {
	return func(d *Dispatcher) { d.lengths = r }
}

// WithTagWriter replaces the ID3 tagger.
func WithTagWriter(w TagWriter) Option {
	return func(d *Dispatcher) { d.tagWriter = w }
}

// WithPlaylists writes one playlist per output directory after each run.
func WithPlaylists(creator *audio.PlaylistCreator) Option {
	return func(d *Dispatcher) { d.playlist = creator }
}

// Dispatcher transcodes jobs across a fixed-size worker pool.
type Dispatcher struct {
	cfg        Config
	tagReader  TagReader
	artReader  ArtworkReader
	lengths    LengthReader
	tagWriter  TagWriter
	images     *ioutils.ImageService
	playlist   *audio.PlaylistCreator
	logger     *slog.Logger
	onProgress func(ProgressEvent)

	total  atomic.Int32
	done   atomic.Int32
	failed atomic.Int32
}

// NewDispatcher creates a Dispatcher for cfg.
func NewDispatcher(cfg Config, opts ...Option) *Dispatcher {
	mf := audio.NewMetaflac(cfg.Metaflac)
	d := &Dispatcher{
		cfg:       cfg,
		tagReader: mf,
		artReader: mf,
		lengths:   mf,
		tagWriter: audio.NewTagger(cfg.Tags),
		images:    ioutils.NewImageService(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers returns the pool size used by Run.
func (d *Dispatcher) Workers() int {
	return d.cfg.PoolSize()
}

// Progress returns counters for the run in flight.
func (d *Dispatcher) Progress() (done, failed, total int) {
	return int(d.done.Load()), int(d.failed.Load()), int(d.total.Load())
}

// Run transcodes every job exactly once and returns when all have
// finished. Failed jobs are recorded in the report and do not stop the
// others. Jobs not yet started when ctx is cancelled fail with ctx's error.
func (d *Dispatcher) Run(ctx context.Context, jobs []model.Job) *model.Report {
	report := &model.Report{
		Started: time.Now(),
		Results: make([]model.Result, len(jobs)),
	}
	d.total.Store(int32(len(jobs)))
	d.done.Store(0)
	d.failed.Store(0)

	d.logger.Info("transcode started",
		slog.Int("jobs", len(jobs)),
		slog.Int("workers", d.Workers()),
	)

	var g errgroup.Group
	g.SetLimit(d.Workers())

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			report.Results[i] = d.finish(model.Result{
				Job:   job,
				Stage: model.StagePrepare,
				Err:   &StageError{Stage: model.StagePrepare, Path: job.Source.Path, Err: err},
			})
			continue
		}
		g.Go(func() error {
			report.Results[i] = d.Transcode(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	report.Elapsed = time.Since(report.Started)

	if d.playlist != nil {
		d.writePlaylists(ctx, report)
	}

	d.logger.Info("transcode finished",
		slog.Int("succeeded", report.Succeeded()),
		slog.Int("failed", report.Total()-report.Succeeded()),
		slog.Duration("elapsed", report.Elapsed.Round(time.Millisecond)),
	)
	return report
}

// Transcode runs one job: decode → encode → tag copy.
func (d *Dispatcher) Transcode(ctx context.Context, job model.Job) model.Result {
	start := time.Now()
	res := model.Result{Job: job}

	if d.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.JobTimeout)
		defer cancel()
	}

	d.progress(ProgressEvent{Message: fmt.Sprintf("Transcoding: %s", job.Rel), Level: LevelVerbose})

	if err := ioutils.EnsureDir(job.OutputDir()); err != nil {
		return d.fail(res, start, &StageError{Stage: model.StagePrepare, Path: job.Source.Path, Err: err})
	}

	if err := d.runPipeline(ctx, job); err != nil {
		if rmErr := ioutils.RemovePartial(job.Output); rmErr != nil {
			d.logger.Warn("could not remove partial output",
				slog.String("output", job.Output),
				slog.String("error", rmErr.Error()),
			)
		}
		return d.fail(res, start, err)
	}

	tags, err := d.tagReader.ReadTags(ctx, job.Source.Path)
	if err != nil {
		return d.fail(res, start, &StageError{Stage: model.StageTags, Path: job.Source.Path, Err: err})
	}

	cover := d.loadCover(ctx, job, &res)

	written, err := d.tagWriter.SaveTags(job.Output, tags, cover)
	if err != nil {
		return d.fail(res, start, &StageError{Stage: model.StageTags, Path: job.Output, Err: err})
	}
	res.Tags = written
	if d.playlist != nil {
		res.Length = d.readLength(ctx, job)
	}
	res.Duration = time.Since(start)

	d.logger.Debug("transcoded",
		slog.String("source", job.Source.Path),
		slog.String("output", job.Output),
		slog.Int("tags", written.Len()),
		slog.Duration("elapsed", res.Duration.Round(time.Millisecond)),
	)
	return d.finish(res)
}

// loadCover reads and prepares cover art. Problems are recorded as
// warnings on res and never fail the job.
func (d *Dispatcher) loadCover(ctx context.Context, job model.Job, res *model.Result) *ioutils.Cover {
	if !d.cfg.Artwork.Embed || d.artReader == nil {
		return nil
	}
	raw, err := d.artReader.ReadArtwork(ctx, job.Source.Path)
	if err != nil {
		if !errors.Is(err, audio.ErrNoArtwork) {
			res.Warnings = append(res.Warnings, err.Error())
		}
		d.logger.Debug("no cover art", slog.String("source", job.Source.Path), slog.String("reason", err.Error()))
		return nil
	}
	cover, err := d.images.PrepareCover(ctx, raw, d.cfg.Artwork.Cover)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("cover art of %s: %v", job.Source.Path, err))
		return nil
	}
	return cover
}

// readLength returns the source length for playlist entries, or zero
// when it cannot be read.
func (d *Dispatcher) readLength(ctx context.Context, job model.Job) time.Duration {
	if d.lengths == nil {
		return 0
	}
	length, err := d.lengths.ReadLength(ctx, job.Source.Path)
	if err != nil {
		d.logger.Debug("unknown length", slog.String("source", job.Source.Path), slog.String("reason", err.Error()))
		return 0
	}
	return length
}

func (d *Dispatcher) fail(res model.Result, start time.Time, err error) model.Result {
	res.Err = err
	res.Duration = time.Since(start)
	var se *StageError
	if errors.As(err, &se) {
		res.Stage = se.Stage
	} else {
		res.Stage = model.StagePrepare
	}

	attrs := []any{
		slog.String("source", res.Job.Source.Path),
		slog.String("stage", res.Stage.String()),
		slog.String("error", err.Error()),
	}
	if res.Stage == model.StageTags {
		d.logger.Error("tag copy failed; audio was written", attrs...)
	} else {
		d.logger.Error("transcode failed", attrs...)
	}
	return d.finish(res)
}

func (d *Dispatcher) finish(res model.Result) model.Result {
	d.done.Add(1)
	for _, w := range res.Warnings {
		d.logger.Warn("transcode warning", slog.String("source", res.Job.Source.Path), slog.String("warning", w))
		d.progress(ProgressEvent{Message: w, Level: LevelWarning})
	}

	ev := ProgressEvent{Result: &res}
	switch {
	case res.OK():
		ev.Level = LevelSuccess
		ev.Message = fmt.Sprintf("Transcoded: %s", res.Job.Rel)
	case res.Stage == model.StageTags:
		d.failed.Add(1)
		ev.Level = LevelError
		ev.Message = fmt.Sprintf("Tags not copied (audio ok): %s: %v", res.Job.Rel, res.Err)
	default:
		d.failed.Add(1)
		ev.Level = LevelError
		ev.Message = fmt.Sprintf("Failed: %s: %v", filepath.Base(res.Job.Source.Path), res.Err)
	}
	d.progress(ev)
	return res
}

func (d *Dispatcher) progress(event ProgressEvent) {
	if d.onProgress != nil {
		d.onProgress(event)
	}
}
