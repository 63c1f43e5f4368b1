package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist("links", testEntries())

	assert.Equal(t, "track1.mp3\ntrack2.mp3\n", content)
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist("links", testEntries())

	assert.True(t, strings.HasPrefix(content, "#EXTM3U\n"))
	assert.Contains(t, content, "#EXTINF:180,Test Artist - track1\n")
	assert.Contains(t, content, "#EXTINF:200,Other Artist - track2\n")
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist("links", testEntries())

	assert.True(t, strings.HasPrefix(content, "[playlist]"))
	assert.Contains(t, content, "File1=track1.mp3")
	assert.Contains(t, content, "Length2=200")
	assert.Contains(t, content, "NumberOfEntries=2")
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist("links", testEntries())

	assert.Contains(t, content, "<?wpl")
	assert.Contains(t, content, "<smil>")
	assert.Contains(t, content, "<title>links</title>")
	assert.Contains(t, content, `<media src="track1.mp3"/>`)
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist("links", testEntries())

	assert.Contains(t, content, "<?zpl")
	assert.Contains(t, content, `trackArtist="Test Artist"`)
	assert.Contains(t, content, `duration="180000"`)
	assert.Contains(t, content, `<meta name="ItemCount" content="2"/>`)
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	entries := []PlaylistEntry{{
		Path:     "/music/Track & Quote.mp3",
		Title:    `Track & "Quote"`,
		Artist:   "Artist <Special>",
		Duration: 3 * time.Minute,
	}}

	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist("Mix & Match", entries)

	assert.Contains(t, content, "Mix &amp; Match")
	assert.Contains(t, content, "Track &amp; &quot;Quote&quot;")
	assert.NotContains(t, content, "<Special>")
}

func TestPlaylistCreator_Empty(t *testing.T) {
	assert.Equal(t, "", NewPlaylistCreator(FormatM3U, false).CreatePlaylist("links", nil))
	assert.Contains(t, NewPlaylistCreator(FormatPLS, false).CreatePlaylist("links", nil), "NumberOfEntries=0")
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		name string
		want PlaylistFormat
	}{
		{"m3u", FormatM3U},
		{".PLS", FormatPLS},
		{"wpl", FormatWPL},
		{"zpl", FormatZPL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaylistFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimPrefix(tt.name, ".")), got.Ext())
		})
	}

	_, err := ParsePlaylistFormat("xspf")
	assert.Error(t, err)
}

func testEntries() []PlaylistEntry {
	return []PlaylistEntry{
		{Path: "/music/track1.mp3", Title: "track1", Artist: "Test Artist", Duration: 180 * time.Second},
		{Path: "/music/track2.mp3", Title: "track2", Artist: "Other Artist", Duration: 200 * time.Second},
	}
}
