// Command flac2mp3 converts a tree of FLAC files to MP3, mirroring the
// directory structure under an output root and copying tags.
//
// Usage:
//
//	flac2mp3 [paths...] [flags]
//	flac2mp3 check
//	flac2mp3 config init|show
//	flac2mp3 inspect FILE.mp3...
//
// The exit status is 0 when every file converted, 1 when any file failed
// or the run could not start, and 130 when interrupted.
package main
