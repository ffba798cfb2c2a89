package config

import (
	"slices"
	"time"

	"github.com/handiism/flac2mp3/internal/audio"
	ioutils "github.com/handiism/flac2mp3/internal/io"
	"github.com/handiism/flac2mp3/internal/model"
	"github.com/handiism/flac2mp3/internal/resolver"
	"github.com/handiism/flac2mp3/internal/transcode"
)

// ToResolverOptions returns the path resolver options.
func (s *Settings) ToResolverOptions() resolver.Options {
	return resolver.Options{
		SourceExt:    s.Paths.SourceExt,
		TargetExt:    s.Paths.TargetExt,
		OutputRoot:   s.Paths.OutputDir,
		OutputSubdir: s.Paths.OutputSubdir,
		FoldCase:     s.Paths.FoldCase,
	}
}

// ToDispatcherConfig returns the transcode configuration.
func (s *Settings) ToDispatcherConfig() transcode.Config {
	return transcode.Config{
		Decoder: transcode.Tool{
			Path: s.Tools.Flac,
			Args: slices.Clone(s.Tools.DecodeArgs),
		},
		Encoder: transcode.EncoderConfig{
			Path: s.Tools.Lame,
			Args: slices.Clone(s.Encoder.Args),
		},
		Metaflac: s.Tools.Metaflac,
		Tags:     s.tagConfig(),
		Artwork: transcode.ArtworkConfig{
			Embed: s.Artwork.Embed,
			Cover: ioutils.CoverOptions{
				Resize:        s.Artwork.Resize,
				MaxSize:       s.Artwork.MaxSize,
				ConvertToJPEG: s.Artwork.ConvertToJPG,
			},
		},
		Workers:    s.Workers.Count,
		JobTimeout: time.Duration(s.Workers.JobTimeoutSeconds) * time.Second,
	}
}

func (s *Settings) tagConfig() *audio.TagConfig {
	if !s.Tags.Modify {
		return &audio.TagConfig{}
	}
	fields := make([]model.TagField, 0, len(s.Tags.Fields))
	for _, name := range s.Tags.Fields {
		if f, ok := model.ParseTagField(name); ok {
			fields = append(fields, f)
		}
	}
	return audio.TagConfigFor(fields)
}

// ToPlaylistCreator returns the playlist creator, or nil when playlists
// are disabled.
func (s *Settings) ToPlaylistCreator() *audio.PlaylistCreator {
	if !s.Playlist.Create {
		return nil
	}
	return audio.NewPlaylistCreator(audio.ParsePlaylistFormat(s.Playlist.Format), s.Playlist.M3UExtended)
}
