package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/flac2mp3/internal/model"
)

// Validate ensures the configuration is usable.
func (s *Settings) Validate() error {
	if err := s.validatePaths(); err != nil {
		return err
	}
	if err := s.validateTools(); err != nil {
		return err
	}
	if len(s.Encoder.Args) == 0 {
		return errors.New("encoder.args must not be empty")
	}
	if err := s.validateTags(); err != nil {
		return err
	}
	if s.Artwork.Embed && s.Artwork.Resize && s.Artwork.MaxSize <= 0 {
		return errors.New("artwork.max_size must be positive when artwork.resize is true")
	}
	switch s.Playlist.Format {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("playlist.format: unsupported value %q", s.Playlist.Format)
	}
	if s.Workers.Count < 0 {
		return errors.New("workers.count must be zero or positive")
	}
	if s.Workers.JobTimeoutSeconds < 0 {
		return errors.New("workers.job_timeout_seconds must be zero or positive")
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", s.Logging.Format)
	}
	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", s.Logging.Level)
	}
	return nil
}

func (s *Settings) validatePaths() error {
	if s.Paths.SourceExt == "" {
		return errors.New("paths.source_ext must be set")
	}
	if s.Paths.TargetExt == "" {
		return errors.New("paths.target_ext must be set")
	}
	if strings.EqualFold(s.Paths.SourceExt, s.Paths.TargetExt) {
		return errors.New("paths.source_ext and paths.target_ext must differ")
	}
	if s.Paths.OutputDir == "" && s.Paths.OutputSubdir == "" {
		return errors.New("paths.output_subdir must be set when paths.output_dir is empty")
	}
	if strings.ContainsAny(s.Paths.OutputSubdir, `/\`) {
		return fmt.Errorf("paths.output_subdir must be a single directory name, got %q", s.Paths.OutputSubdir)
	}
	return nil
}

func (s *Settings) validateTools() error {
	if strings.TrimSpace(s.Tools.Flac) == "" {
		return errors.New("tools.flac must be set")
	}
	if strings.TrimSpace(s.Tools.Lame) == "" {
		return errors.New("tools.lame must be set")
	}
	if strings.TrimSpace(s.Tools.Metaflac) == "" {
		return errors.New("tools.metaflac must be set")
	}
	return nil
}

func (s *Settings) validateTags() error {
	for _, f := range s.Tags.Fields {
		if _, ok := model.ParseTagField(f); !ok {
			return fmt.Errorf("tags.fields: unknown field %q", f)
		}
	}
	return nil
}
