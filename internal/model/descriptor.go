package model

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
)

// SourceItem is one source identifier read from the input list.
//
// Identifier is already trimmed of surrounding whitespace. Line is the
// 1-indexed line of the input list it came from, used in reports.
type SourceItem struct {
	Line       int
	Identifier string
}

// String returns the identifier.
func (s SourceItem) String() string {
	return s.Identifier
}

// ParseSourceList reads one identifier per line.
//
// Lines are trimmed. Blank lines and lines starting with '#' are skipped.
// No other syntax is recognised: anything else on a line is the identifier.
func ParseSourceList(r io.Reader) ([]SourceItem, error) {
	var items []SourceItem

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		items = append(items, SourceItem{Line: line, Identifier: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}

	return items, nil
}

// StreamHandle opens the byte stream of a resolved audio stream.
//
// Open returns the body, the total size in bytes as reported by the
// source (0 when unknown) and an error if the transfer cannot start.
type StreamHandle interface {
	Open(ctx context.Context) (io.ReadCloser, int64, error)
}

// StreamDescriptor is the audio stream chosen for one source item.
//
// Example:
//
//	desc := &StreamDescriptor{
//	    ID:       "dQw4w9WgXcQ",
//	    Title:    "My/Song:Title?",
//	    Author:   "Someone",
//	    Bitrate:  160000,
//	    Size:     3_400_000,
//	    MimeType: `audio/webm; codecs="opus"`,
//	}
//	desc.FileBase()  // "MySongTitle"
//	desc.NativeExt() // "webm"
type StreamDescriptor struct {
	// ID is the unique source id (for YouTube, the 11 character video id).
	ID string

	// Title and Author are display strings, written verbatim into tags.
	Title  string
	Author string

	// Duration of the source, 0 if unknown.
	Duration time.Duration

	// Bitrate of the selected stream in bits per second.
	Bitrate int

	// Size of the selected stream in bytes.
	Size int64

	// MimeType of the selected stream, including codec parameters.
	MimeType string

	// Handle fetches the stream bytes.
	Handle StreamHandle

	// Name, when set, replaces the sanitized title as the base of every
	// output filename.
	Name string
}

// FileBase returns the sanitized title used to name output files.
//
// Name wins when set. Otherwise falls back to the source id when nothing
// usable is left of the title.
func (d *StreamDescriptor) FileBase() string {
	if d.Name != "" {
		return d.Name
	}
	base := ioutils.SanitizeFileName(d.Title)
	if strings.TrimSpace(base) == "" {
		return ioutils.SanitizeFileName(d.ID)
	}
	return base
}

// NativeExt returns the extension of the source container, without a dot.
func (d *StreamDescriptor) NativeExt() string {
	mediaType, _, err := mime.ParseMediaType(d.MimeType)
	if err != nil {
		return "bin"
	}

	switch mediaType {
	case "audio/webm":
		return "webm"
	case "audio/mp4":
		return "m4a"
	case "audio/mpeg":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	default:
		return "bin"
	}
}
