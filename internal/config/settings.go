package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/ytaudio-downloader/internal/audio"
)

// Settings holds all configuration options.
type Settings struct {
	// Input and output locations
	InputFile string `toml:"input_file" env:"YTAUDIO_INPUT"`
	AudioDir  string `toml:"audio_dir" env:"YTAUDIO_AUDIO_DIR"`
	ImageDir  string `toml:"image_dir" env:"YTAUDIO_IMAGE_DIR"`

	// Transcoding
	TargetFormat      string `toml:"target_format"`
	TargetBitrateKbps int    `toml:"target_bitrate_kbps" env:"YTAUDIO_BITRATE"`
	FfmpegBinPath     string `toml:"ffmpeg_bin_path" env:"YTAUDIO_FFMPEG"`
	FfprobeBinPath    string `toml:"ffprobe_bin_path" env:"YTAUDIO_FFPROBE"`

	// Cover art settings
	ArtworkSize        int    `toml:"artwork_size"`
	ArtworkURLTemplate string `toml:"artwork_url_template"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	KeepArtwork        bool   `toml:"keep_artwork"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		InputFile: "links.txt",
		AudioDir:  "downloads",
		ImageDir:  filepath.Join("downloads", "images"),

		TargetFormat:      "mp3",
		TargetBitrateKbps: 320,
		FfmpegBinPath:     "ffmpeg",
		FfprobeBinPath:    "ffprobe",

		ArtworkSize:        1400,
		ArtworkURLTemplate: "https://img.youtube.com/vi/%s/maxresdefault.jpg",
		HTTPTimeoutSeconds: 60,
		KeepArtwork:        true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "ytaudio", "config.toml"), nil
}

// Load reads settings from a TOML file, then applies environment
// overrides. A missing file yields the defaults; the second return value
// reports whether the file existed.
func Load(path string) (*Settings, bool, error) {
	settings := DefaultSettings()
	exists := false

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		exists = true
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(settings); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, fmt.Errorf("read config: %w", err)
	}

	if err := cleanenv.ReadEnv(settings); err != nil {
		return nil, false, fmt.Errorf("read environment: %w", err)
	}

	return settings, exists, nil
}

// Marshal renders the settings as TOML.
func (s *Settings) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.AudioDir) == "" {
		return errors.New("audio_dir must be set")
	}
	if strings.TrimSpace(s.ImageDir) == "" {
		return errors.New("image_dir must be set")
	}
	if s.TargetFormat != "mp3" {
		return fmt.Errorf("target_format %q is not supported; only mp3 carries ID3 tags", s.TargetFormat)
	}
	if s.TargetBitrateKbps <= 0 {
		return fmt.Errorf("target_bitrate_kbps must be positive, got %d", s.TargetBitrateKbps)
	}
	if s.ArtworkSize <= 0 {
		return fmt.Errorf("artwork_size must be positive, got %d", s.ArtworkSize)
	}
	if s.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", s.HTTPTimeoutSeconds)
	}
	if strings.Count(s.ArtworkURLTemplate, "%s") != 1 || strings.Count(s.ArtworkURLTemplate, "%") != 1 {
		return fmt.Errorf("artwork_url_template must contain exactly one %%s, got %q", s.ArtworkURLTemplate)
	}
	if _, err := audio.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		return fmt.Errorf("playlist_format: %w", err)
	}
	return nil
}

// HTTPTimeout returns the artwork request timeout.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

// Playlist returns the playlist creator configured by these settings, or
// nil when playlist creation is disabled.
func (s *Settings) Playlist() *audio.PlaylistCreator {
	if !s.CreatePlaylist {
		return nil
	}
	format, err := audio.ParsePlaylistFormat(s.PlaylistFormat)
	if err != nil {
		format = audio.FormatM3U
	}
	return audio.NewPlaylistCreator(format, s.M3UExtended)
}
