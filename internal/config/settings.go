package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths controls discovery and output placement.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	OutputSubdir string `toml:"output_subdir"`
	SourceExt    string `toml:"source_ext"`
	TargetExt    string `toml:"target_ext"`
	FoldCase     bool   `toml:"fold_case"`
}

// Tools names the external programs and the decoder arguments.
type Tools struct {
	Flac       string   `toml:"flac"`
	Lame       string   `toml:"lame"`
	Metaflac   string   `toml:"metaflac"`
	DecodeArgs []string `toml:"decode_args"`
}

// Encoder holds the encoding profile. It is fixed unless overridden.
type Encoder struct {
	Args []string `toml:"args"`
}

// Tags selects which Tag Set fields are copied.
type Tags struct {
	Modify bool     `toml:"modify"`
	Fields []string `toml:"fields"`
}

// Artwork controls cover art embedding.
type Artwork struct {
	Embed        bool `toml:"embed"`
	Resize       bool `toml:"resize"`
	MaxSize      int  `toml:"max_size"`
	ConvertToJPG bool `toml:"convert_to_jpg"`
}

// Playlist controls per-directory playlist generation.
type Playlist struct {
	Create      bool   `toml:"create"`
	Format      string `toml:"format"` // m3u, pls, wpl, zpl
	M3UExtended bool   `toml:"m3u_extended"`
}

// Workers sizes the transcode pool.
type Workers struct {
	Count             int `toml:"count"`
	JobTimeoutSeconds int `toml:"job_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Settings holds all configuration options.
type Settings struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Encoder  Encoder  `toml:"encoder"`
	Tags     Tags     `toml:"tags"`
	Artwork  Artwork  `toml:"artwork"`
	Playlist Playlist `toml:"playlist"`
	Workers  Workers  `toml:"workers"`
	Logging  Logging  `toml:"logging"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Paths: Paths{
			OutputSubdir: "mp3",
			SourceExt:    ".flac",
			TargetExt:    ".mp3",
			FoldCase:     runtime.GOOS == "darwin" || runtime.GOOS == "windows",
		},
		Tools: Tools{
			Flac:       "flac",
			Lame:       "lame",
			Metaflac:   "metaflac",
			DecodeArgs: []string{"--silent", "--decode", "--stdout"},
		},
		Encoder: Encoder{
			Args: []string{"--silent", "-V", "0"},
		},
		Tags: Tags{
			Modify: true,
			Fields: []string{
				"TITLE", "ARTIST", "ALBUM", "ALBUMARTIST", "DATE",
				"TRACKNUMBER", "TRACKTOTAL", "DISCNUMBER", "GENRE", "COMMENT",
			},
		},
		Artwork: Artwork{
			Embed:        true,
			Resize:       true,
			MaxSize:      1000,
			ConvertToJPG: true,
		},
		Playlist: Playlist{
			Create:      false,
			Format:      "m3u",
			M3UExtended: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	return ExpandPath("~/.config/flac2mp3/config.toml")
}

// Load locates, parses and validates a configuration file. An empty path
// checks the per-user location and then ./flac2mp3.toml. A missing file is
// not an error; defaults are returned with exists set to false.
func Load(path string) (settings *Settings, resolved string, exists bool, err error) {
	resolved, exists, err = resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	settings = DefaultSettings()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, settings); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, "", false, err
	}
	return settings, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("flac2mp3.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode returns the TOML form of the settings.
func (s *Settings) Encode() (string, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func (s *Settings) normalize() {
	s.Paths.SourceExt = normalizeExt(s.Paths.SourceExt)
	s.Paths.TargetExt = normalizeExt(s.Paths.TargetExt)
	s.Paths.OutputSubdir = strings.TrimSpace(s.Paths.OutputSubdir)
	if dir := strings.TrimSpace(s.Paths.OutputDir); dir != "" {
		if expanded, err := ExpandPath(dir); err == nil {
			dir = expanded
		}
		s.Paths.OutputDir = dir
	}
	s.Playlist.Format = strings.ToLower(strings.TrimSpace(s.Playlist.Format))
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	s.Logging.Format = strings.ToLower(strings.TrimSpace(s.Logging.Format))
	for i, f := range s.Tags.Fields {
		s.Tags.Fields[i] = strings.ToUpper(strings.TrimSpace(f))
	}
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ExpandPath resolves a leading "~" and returns a clean absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
