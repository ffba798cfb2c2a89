package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"time"

	"github.com/handiism/flac2mp3/internal/model"
)

// waitDelay bounds how long Wait blocks on stderr after a process is
// killed, in case a child of the tool still holds the pipe open.
const waitDelay = 5 * time.Second

// runPipeline decodes job.Source into the encoder, which writes
// job.Output. Both processes run concurrently, joined by a Link.
func (d *Dispatcher) runPipeline(ctx context.Context, job model.Job) error {
	link, err := NewLink()
	if err != nil {
		return &StageError{Stage: model.StagePrepare, Path: job.Source.Path, Err: fmt.Errorf("open pipe: %w", err)}
	}
	defer link.Close()

	decArgs := append(slices.Clone(d.cfg.Decoder.Args), job.Source.Path)
	dec := exec.CommandContext(ctx, d.cfg.Decoder.Path, decArgs...)
	decStderr := newTailBuffer(stderrTailSize)
	dec.Stdout = link.Writer()
	dec.Stderr = decStderr
	dec.WaitDelay = waitDelay

	encArgs := append(slices.Clone(d.cfg.Encoder.Args), "-", job.Output)
	enc := exec.CommandContext(ctx, d.cfg.Encoder.Path, encArgs...)
	encStderr := newTailBuffer(stderrTailSize)
	enc.Stdin = link.Reader()
	enc.Stderr = encStderr
	enc.WaitDelay = waitDelay

	d.logger.Debug("starting pipeline",
		slog.String("source", job.Source.Path),
		slog.Any("decoder", dec.Args),
		slog.Any("encoder", enc.Args),
	)

	if err := enc.Start(); err != nil {
		return &StageError{Stage: model.StagePrepare, Path: job.Source.Path, Err: fmt.Errorf("start encoder: %w", err)}
	}
	if err := dec.Start(); err != nil {
		// Closing the write end lets the encoder see EOF and exit.
		link.Close()
		_ = enc.Wait()
		return &StageError{Stage: model.StagePrepare, Path: job.Source.Path, Err: fmt.Errorf("start decoder: %w", err)}
	}
	link.Close()

	decErr := dec.Wait()
	encErr := enc.Wait()

	if err := ctx.Err(); err != nil {
		return &StageError{Stage: model.StageEncode, Path: job.Source.Path, Err: err}
	}
	// A decoder killed by SIGPIPE is a symptom of the encoder exiting
	// early, so the encoder is blamed.
	if decErr != nil && !(encErr != nil && brokenPipe(decErr)) {
		return &StageError{Stage: model.StageDecode, Path: job.Source.Path, Err: decErr, Stderr: decStderr.String()}
	}
	if encErr != nil {
		return &StageError{Stage: model.StageEncode, Path: job.Source.Path, Err: encErr, Stderr: encStderr.String()}
	}
	return nil
}
