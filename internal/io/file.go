// Package ioutils provides file system utilities for the ytaudio-downloader.
//
// This package contains functions for:
//   - File writing
//   - Filename sanitization
//   - Directory creation
//   - Removal of intermediate files
package ioutils

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// forbiddenChars is the documented forbidden set:
// < > : " / \ | ? * and control characters (0x00-0x1f).
var forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/music/playlist.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes characters that are invalid in file/folder names.
//
// Exactly the forbidden characters are removed; every other character,
// including spaces, dots and non-ASCII letters, is preserved as is.
//
// Example:
//
//	SanitizeFileName("My/Song:Title?")   // Returns "MySongTitle"
//	SanitizeFileName("Track... (Live)") // Returns "Track... (Live)"
func SanitizeFileName(name string) string {
	return forbiddenChars.ReplaceAllString(name, "")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// HasStem reports whether dir holds an entry named stem plus an extension,
// ignoring a trailing ".src" and letter case. A missing dir holds nothing.
//
// Example:
//
//	// dir holds "Song.mp3.src"
//	HasStem(dir, "song") // true
func HasStem(dir, stem string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".src")
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if strings.EqualFold(name, stem) {
			return true, nil
		}
	}
	return false, nil
}
