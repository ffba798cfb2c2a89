package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/flac2mp3/internal/config"
	"github.com/handiism/flac2mp3/internal/logging"
)

type commandContext struct {
	opts *rootOptions

	settings   *config.Settings
	configPath string
	exists     bool
}

func newCommandContext(opts *rootOptions) *commandContext {
	return &commandContext{opts: opts}
}

// ensureSettings loads the configuration file and applies flag overrides.
func (c *commandContext) ensureSettings() (*config.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	settings, path, exists, err := config.Load(strings.TrimSpace(c.opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.applyOverrides(settings); err != nil {
		return nil, err
	}
	c.settings, c.configPath, c.exists = settings, path, exists
	return settings, nil
}

func (c *commandContext) applyOverrides(s *config.Settings) error {
	o := c.opts
	if o.output != "" {
		dir, err := config.ExpandPath(o.output)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		s.Paths.OutputDir = dir
	}
	if o.jobs < 0 {
		return errors.New("--jobs must be zero or positive")
	}
	if o.jobs > 0 {
		s.Workers.Count = o.jobs
	}
	if o.playlist {
		s.Playlist.Create = true
	}
	if o.noArtwork {
		s.Artwork.Embed = false
	}
	if o.logLevel != "" {
		s.Logging.Level = strings.ToLower(strings.TrimSpace(o.logLevel))
	}
	if o.logFormat != "" {
		s.Logging.Format = strings.ToLower(strings.TrimSpace(o.logFormat))
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func (c *commandContext) newLogger(w io.Writer) (*slog.Logger, error) {
	s, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  s.Logging.Level,
		Format: s.Logging.Format,
		Output: w,
	})
}
