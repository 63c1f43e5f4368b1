// Package config provides configuration management for ytaudio-downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Environment variable overrides (YTAUDIO_*)
//   - Default configuration values and validation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Reads links.txt
//	// Writes 320 kbps MP3s to downloads/
//	// Writes 1400x1400 cover art to downloads/images/
//
// # Loading from File
//
//	settings, exists, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Malformed file or environment value
//	}
//	// exists is false when the file was missing and defaults were used
//
// # Precedence
//
// Defaults, then the TOML file, then environment variables. Command-line
// flags are applied by the caller on top of the loaded settings, and
// Validate should run after that.
package config
