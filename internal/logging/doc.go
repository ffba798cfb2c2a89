// Package logging builds the slog loggers used by flac2mp3.
//
// Two formats are supported: "console", a compact human readable line
// per record, coloured when writing to a terminal, and "json" for
// machine consumption.
package logging
