// Package preflight checks that a conversion can start: the decoder,
// encoder and tag reader binaries are installed and the output root can
// be written.
//
// The CLI runs these checks before every conversion and on their own via
// "flac2mp3 check".
package preflight
