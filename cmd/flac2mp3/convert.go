package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/handiism/flac2mp3/internal/logging"
	"github.com/handiism/flac2mp3/internal/model"
	"github.com/handiism/flac2mp3/internal/preflight"
	"github.com/handiism/flac2mp3/internal/resolver"
	"github.com/handiism/flac2mp3/internal/transcode"
)

func runConvert(cmd *cobra.Command, ctx *commandContext, inputs []string) error {
	settings, err := ctx.ensureSettings()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logger.With(slog.String(logging.FieldRunID, uuid.NewString()))
	if ctx.exists {
		logger.Debug("configuration loaded", slog.String("path", ctx.configPath))
	}

	out := cmd.OutOrStdout()
	printer := newProgressPrinter(out, ctx.opts.verbose)

	plan, err := resolver.New(settings.ToResolverOptions()).Resolve(inputs)
	if err != nil {
		return fmt.Errorf("resolve inputs: %w", err)
	}
	for _, missing := range plan.Missing {
		logger.Warn("input not found", slog.String("input", missing))
		printer.print(transcode.ProgressEvent{Message: "Input not found: " + missing, Level: transcode.LevelWarning})
	}
	for _, skipped := range plan.Skipped {
		logger.Debug("input skipped", slog.String("path", skipped))
	}

	fmt.Fprintf(out, "Found %d %s files under %s\n", plan.Len(), settings.Paths.SourceExt, plan.Root)
	fmt.Fprintf(out, "Output: %s\n\n", plan.OutputRoot)

	if ctx.opts.dryRun {
		fmt.Fprintln(out, renderPlan(plan))
		fmt.Fprintln(out, "\n[Dry run - nothing converted]")
		return nil
	}

	if failed := preflight.Failed(preflight.RunAll(settings, plan.OutputRoot)); len(failed) > 0 {
		fmt.Fprintln(out, renderChecks(failed))
		return errors.New("preflight checks failed")
	}

	lock, err := transcode.AcquireRunLock(plan.OutputRoot)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("run lock not released", slog.String("path", lock.Path()), slog.String("error", err.Error()))
		}
	}()

	dispatcher := transcode.NewDispatcher(settings.ToDispatcherConfig(),
		transcode.WithLogger(logger),
		transcode.WithProgress(printer.print),
		transcode.WithPlaylists(settings.ToPlaylistCreator()),
	)
	report := dispatcher.Run(cmd.Context(), plan.Jobs)

	printSummary(out, plan, report)
	if !report.OK() {
		return fmt.Errorf("%d of %d files failed", len(report.Failed()), report.Total())
	}
	return nil
}

func renderPlan(plan *model.Plan) string {
	rows := make([][]string, 0, len(plan.Jobs))
	for i, job := range plan.Jobs {
		source, err := filepath.Rel(plan.Root, job.Source.Path)
		if err != nil {
			source = job.Source.Path
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), source, job.Rel})
	}
	return renderTable([]string{"#", "Source", "Output"}, rows, []columnAlignment{alignRight})
}

func printSummary(w io.Writer, plan *model.Plan, report *model.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Converted %d/%d files in %s\n",
		report.Succeeded(), report.Total(), report.Elapsed.Round(time.Millisecond))

	failed := report.Failed()
	if len(failed) == 0 {
		return
	}
	rows := make([][]string, 0, len(failed))
	for _, res := range failed {
		source, err := filepath.Rel(plan.Root, res.Job.Source.Path)
		if err != nil {
			source = res.Job.Source.Path
		}
		rows = append(rows, []string{res.Stage.String(), source, failureDetail(res.Err)})
	}
	fmt.Fprintln(w, renderTable([]string{"Stage", "Source", "Error"}, rows, nil))
}

func failureDetail(err error) string {
	var se *transcode.StageError
	if errors.As(err, &se) {
		return se.Detail()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
