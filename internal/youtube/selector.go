package youtube

import (
	"context"
	"fmt"
	"io"

	kkdai "github.com/kkdai/youtube/v2"

	"github.com/handiism/ytaudio-downloader/internal/model"
)

// Client is the part of the kkdai/youtube client the selector needs.
// *kkdai.Client satisfies it.
type Client interface {
	GetVideoContext(ctx context.Context, url string) (*kkdai.Video, error)
	GetStreamContext(ctx context.Context, video *kkdai.Video, format *kkdai.Format) (io.ReadCloser, int64, error)
}

// Selector picks the best audio-only stream for a source identifier.
type Selector struct {
	client Client
}

// NewSelector creates a Selector backed by client.
func NewSelector(client Client) *Selector {
	return &Selector{client: client}
}

// Select resolves identifier and returns a descriptor for its highest
// bitrate audio-only stream.
//
// Returns an error wrapping model.ErrResolution if the identifier cannot be
// resolved, or model.ErrNoAudioStream if no audio-only stream exists.
// No retries are attempted.
func (s *Selector) Select(ctx context.Context, identifier string) (*model.StreamDescriptor, error) {
	video, err := s.client.GetVideoContext(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrResolution, identifier, err)
	}
	if video == nil {
		return nil, fmt.Errorf("%w: %s: empty response", model.ErrResolution, identifier)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, fmt.Errorf("%w: %s (%d formats offered)", model.ErrNoAudioStream, video.ID, len(video.Formats))
	}

	return &model.StreamDescriptor{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Bitrate:  bitrateForFormat(format),
		Size:     int64(format.ContentLength),
		MimeType: format.MimeType,
		Handle: &streamHandle{
			client: s.client,
			video:  video,
			format: format,
		},
	}, nil
}

// bestAudioFormat returns the audio-only format with the highest bitrate,
// or nil if there is none. Ties keep the first one listed.
func bestAudioFormat(formats kkdai.FormatList) *kkdai.Format {
	var best *kkdai.Format
	for i := range formats {
		f := &formats[i]
		if !isAudioOnly(f) {
			continue
		}
		if best == nil || bitrateForFormat(f) > bitrateForFormat(best) {
			best = f
		}
	}
	return best
}

func isAudioOnly(f *kkdai.Format) bool {
	return f.AudioChannels > 0 && f.Width == 0 && f.Height == 0
}

func bitrateForFormat(f *kkdai.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// streamHandle opens one selected format.
type streamHandle struct {
	client Client
	video  *kkdai.Video
	format *kkdai.Format
}

func (h *streamHandle) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	return h.client.GetStreamContext(ctx, h.video, h.format)
}
