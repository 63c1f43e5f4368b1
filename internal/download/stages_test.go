package download

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/ytaudio-downloader/internal/config"
)

func TestPlaylistTitle(t *testing.T) {
	assert.Equal(t, "links", PlaylistTitle("links.txt"))
	assert.Equal(t, "links", PlaylistTitle(filepath.Join("home", "me", "links.txt")))
	assert.Equal(t, "my.list", PlaylistTitle("my.list.txt"))
	assert.Equal(t, "command line", PlaylistTitle("command line"))
}

func TestNewOptions(t *testing.T) {
	settings := config.DefaultSettings()
	settings.CreatePlaylist = true

	opts := NewOptions(settings, filepath.Join("lists", "mix.txt"))

	assert.Equal(t, settings.AudioDir, opts.AudioDir)
	assert.Equal(t, settings.ImageDir, opts.ImageDir)
	assert.Equal(t, settings.KeepArtwork, opts.KeepArtwork)
	assert.Equal(t, "mix", opts.PlaylistTitle)
	require.NotNil(t, opts.Playlist)
}
