package transcode

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
	"github.com/handiism/ytaudio-downloader/internal/model"
)

// Encoder converts inputPath into outputPath at a fixed audio bitrate.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error
}

// Transcoder converts download artifacts into audio artifacts.
type Transcoder struct {
	encoder     Encoder
	format      string
	bitrateKbps int
}

// NewTranscoder creates a Transcoder producing files with extension format
// (e.g. "mp3") at bitrateKbps.
func NewTranscoder(encoder Encoder, format string, bitrateKbps int) *Transcoder {
	return &Transcoder{
		encoder:     encoder,
		format:      strings.TrimPrefix(format, "."),
		bitrateKbps: bitrateKbps,
	}
}

// OutputPath returns <destDir>/<basename>.<format> for inputPath, where
// basename is the input name without its extension and without a trailing
// ".src" ("Song.webm" and "Song.mp3.src" both give "Song").
func (t *Transcoder) OutputPath(inputPath, destDir string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, ".src")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destDir, base+"."+t.format)
}

// Transcode encodes inputPath into destDir and deletes inputPath on
// success.
//
// An existing file at the output path is never overwritten or removed.
// On failure the returned error wraps model.ErrTranscode, any partial
// output is removed and inputPath is kept.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, destDir string) (string, error) {
	outputPath := t.OutputPath(inputPath, destDir)
	if ioutils.Exists(outputPath) {
		return "", fmt.Errorf("%w: %s already exists", model.ErrTranscode, outputPath)
	}

	if err := t.encoder.Encode(ctx, inputPath, outputPath, t.bitrateKbps); err != nil {
		_ = ioutils.RemoveIfExists(outputPath)
		return "", fmt.Errorf("%w: %s: %w", model.ErrTranscode, filepath.Base(inputPath), err)
	}
	if !ioutils.Exists(outputPath) {
		return "", fmt.Errorf("%w: encoder reported success but %s is missing", model.ErrTranscode, outputPath)
	}

	if err := ioutils.RemoveIfExists(inputPath); err != nil {
		return outputPath, fmt.Errorf("%w: remove intermediate %s: %w", model.ErrTranscode, inputPath, err)
	}

	return outputPath, nil
}
