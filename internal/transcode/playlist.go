package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/handiism/flac2mp3/internal/audio"
	ioutils "github.com/handiism/flac2mp3/internal/io"
	"github.com/handiism/flac2mp3/internal/model"
)

// PlaylistPath returns where the playlist for dir is written: inside dir,
// named after it.
func PlaylistPath(dir string, format audio.PlaylistFormat) string {
	name := ioutils.SanitizeFileName(filepath.Base(dir))
	if name == "" {
		name = "playlist"
	}
	return filepath.Join(dir, name+format.Extension())
}

// PlaylistEntries groups successful results by output directory. Entries
// are sorted by file name so track-number prefixes give album order.
func PlaylistEntries(results []model.Result) map[string][]audio.PlaylistEntry {
	byDir := make(map[string][]audio.PlaylistEntry)
	for _, res := range results {
		if !res.OK() {
			continue
		}
		dir := res.Job.OutputDir()
		byDir[dir] = append(byDir[dir], audio.PlaylistEntry{
			Path:   filepath.Base(res.Job.Output),
			Title:  res.Tags.Value(model.TagTitle),
			Artist: res.Tags.Value(model.TagArtist),

			Duration: res.Length.Seconds(),
		})
	}
	for _, entries := range byDir {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	}
	return byDir
}

func (d *Dispatcher) writePlaylists(ctx context.Context, report *model.Report) {
	for dir, entries := range PlaylistEntries(report.Results) {
		path := PlaylistPath(dir, d.playlist.Format())
		content := d.playlist.CreatePlaylist(filepath.Base(dir), entries)
		if err := ioutils.WriteFileAtomic(ctx, path, []byte(content)); err != nil {
			d.logger.Warn("playlist not written", slog.String("path", path), slog.String("error", err.Error()))
			d.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist %s: %v", path, err), Level: LevelWarning})
			continue
		}
		d.logger.Info("playlist written", slog.String("path", path), slog.Int("entries", len(entries)))
		d.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: LevelSuccess})
	}
}
