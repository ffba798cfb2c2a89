// Package config provides configuration management for flac2mp3.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Validation of user supplied values
//   - Conversion to the option structs of the resolver and dispatcher
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Outputs to <common ancestor>/mp3
//	// One worker per CPU
//	// lame -V 0 variable bitrate
//
// # Loading from File
//
//	settings, path, exists, err := config.Load("")
//	// Looks at ~/.config/flac2mp3/config.toml, then ./flac2mp3.toml.
//	// A missing file yields defaults.
//
// # Saving Settings
//
//	settings.Workers.Count = 4
//	err := settings.Save("/path/to/config.toml")
package config
