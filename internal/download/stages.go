package download

import (
	"path/filepath"
	"strings"

	kkdai "github.com/kkdai/youtube/v2"

	"github.com/handiism/ytaudio-downloader/internal/artwork"
	"github.com/handiism/ytaudio-downloader/internal/audio"
	"github.com/handiism/ytaudio-downloader/internal/config"
	"github.com/handiism/ytaudio-downloader/internal/fetch"
	"github.com/handiism/ytaudio-downloader/internal/http"
	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
	"github.com/handiism/ytaudio-downloader/internal/transcode"
	"github.com/handiism/ytaudio-downloader/internal/youtube"
)

// NewStages wires the production stage implementations from settings.
// The returned encoder is also what preflight checks resolve.
func NewStages(settings *config.Settings) (Stages, *transcode.FFmpegEncoder) {
	encoder := transcode.NewFFmpegEncoder(settings.FfmpegBinPath, settings.FfprobeBinPath)
	artworkClient := http.NewClient(settings.HTTPTimeout())

	return Stages{
		Selector:   youtube.NewSelector(&kkdai.Client{}),
		Fetcher:    fetch.NewFetcher(settings.TargetFormat),
		Transcoder: transcode.NewTranscoder(encoder, settings.TargetFormat, settings.TargetBitrateKbps),
		Artwork:    artwork.NewFetcher(artworkClient, settings.ArtworkURLTemplate),
		Normalizer: artwork.NewNormalizer(ioutils.NewImageService(), settings.ArtworkSize),
		Embedder:   audio.NewEmbedder(),
	}, encoder
}

// NewOptions derives Manager options from settings. source names where
// the items came from; the playlist is titled after it.
func NewOptions(settings *config.Settings, source string) Options {
	return Options{
		AudioDir:      settings.AudioDir,
		ImageDir:      settings.ImageDir,
		KeepArtwork:   settings.KeepArtwork,
		Playlist:      settings.Playlist(),
		PlaylistTitle: PlaylistTitle(source),
	}
}

// PlaylistTitle is the base name of source without its extension
// ("lists/links.txt" gives "links").
func PlaylistTitle(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
