package transcode

import (
	"runtime"
	"time"

	"github.com/handiism/flac2mp3/internal/audio"
	ioutils "github.com/handiism/flac2mp3/internal/io"
)

// Tool is an external program and the arguments placed before the
// per-file arguments.
type Tool struct {
	Path string
	Args []string
}

// EncoderConfig is the encoding profile. The encoder is invoked as
//
//	<Path> <Args...> - <output>
//
// reading decoded audio from stdin. The default is lame in constant
// quality VBR mode at -V 0.
type EncoderConfig struct {
	Path string
	Args []string
}

// ArtworkConfig controls cover art embedding.
type ArtworkConfig struct {
	Embed bool
	Cover ioutils.CoverOptions
}

// Config holds everything a Dispatcher needs to run jobs.
type Config struct {
	// Decoder is invoked as <Path> <Args...> <source> and must write
	// decoded audio to stdout.
	Decoder Tool

	Encoder EncoderConfig

	// Metaflac is the tag and picture reader binary.
	Metaflac string

	// Tags selects the copied fields; nil copies the whole Tag Set.
	Tags *audio.TagConfig

	Artwork ArtworkConfig

	// Workers is the pool size. Zero or less means runtime.NumCPU().
	Workers int

	// JobTimeout bounds one job. Zero means no timeout.
	JobTimeout time.Duration
}

// DefaultConfig returns the built-in tool invocations.
func DefaultConfig() Config {
	return Config{
		Decoder: Tool{
			Path: "flac",
			Args: []string{"--silent", "--decode", "--stdout"},
		},
		Encoder: EncoderConfig{
			Path: "lame",
			Args: []string{"--silent", "-V", "0"},
		},
		Metaflac: "metaflac",
		Tags:     audio.DefaultTagConfig(),
		Artwork: ArtworkConfig{
			Embed: true,
			Cover: ioutils.CoverOptions{Resize: true, MaxSize: 1000, ConvertToJPEG: true},
		},
	}
}

// PoolSize returns the number of concurrent jobs.
func (c Config) PoolSize() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return max(1, runtime.NumCPU())
}
