// Package audio reads and writes audio metadata and builds playlists.
//
// # Reading FLAC tags
//
// Metaflac wraps the external metaflac tool:
//
//	mf := audio.NewMetaflac("metaflac")
//	tags, err := mf.ReadTags(ctx, "/music/flac/01.flac")
//	cover, err := mf.ReadArtwork(ctx, "/music/flac/01.flac")
//
// # ID3 Tagging
//
// Use the Tagger to write the Tag Set to MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	written, err := tagger.SaveTags("/music/mp3/01.mp3", tags, cover)
//
// ReadID3 reads the same fields back from an MP3.
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Album", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
