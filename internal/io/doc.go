// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation and best-effort removal
//   - Square normalization of cover art
//
// # Filename Sanitization
//
// Use SanitizeFileName to strip characters that are invalid in filenames:
//
//	safe := ioutils.SanitizeFileName("My/Song:Title?") // Returns "MySongTitle"
//
// # Image Processing
//
// The ImageService turns a downloaded thumbnail into square cover art:
//
//	svc := ioutils.NewImageService()
//
//	// Center-crop to a square, scale to 1400x1400, overwrite in place
//	err := svc.NormalizeSquare(ctx, "/images/Song.jpg", 1400)
package ioutils
