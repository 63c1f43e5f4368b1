package model

import (
	"errors"
	"fmt"
)

// Stage error kinds. Every stage wraps its failure in exactly one of these
// so callers can classify with errors.Is.
var (
	// ErrResolution is returned when an identifier cannot be resolved at all
	// (malformed, private, removed).
	ErrResolution = errors.New("resolution failed")

	// ErrNoAudioStream is returned when a source resolves but offers no
	// audio-only stream.
	ErrNoAudioStream = errors.New("no audio-only stream")

	ErrDownload     = errors.New("download failed")
	ErrTranscode    = errors.New("transcode failed")
	ErrArtworkFetch = errors.New("artwork fetch failed")
	ErrNormalize    = errors.New("artwork normalize failed")
	ErrMetadata     = errors.New("metadata embedding failed")
)

// StageError records the stage an item failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
