// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Atomic file replacement and partial output cleanup
//   - Image resizing and format conversion
//
// # File Operations
//
//	// Ensure the parent directory of an output exists
//	err := ioutils.EnsureDir("/music/mp3/Artist/Album")
//
//	// Write a playlist without leaving a half-written file behind
//	err := ioutils.WriteFileAtomic(ctx, "/music/mp3/Album/Album.m3u", data)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Image Processing
//
// The ImageService prepares cover art before it is embedded:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 1000x1000
//	resized, _ := svc.ResizeImage(ctx, imageData, 1000, 1000)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
