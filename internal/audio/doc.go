// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Embedder to write ID3 tags to transcoded MP3 files:
//
//	embedder := audio.NewEmbedder()
//	res, err := embedder.Embed(audioPath, descriptor, artworkPath)
//
// The embedder writes:
//   - Title and Artist, verbatim from the stream descriptor
//   - Cover Art (APIC front cover, JPEG or PNG)
//
// Cover art problems never fail the call; they are reported in
// EmbedResult.ArtworkSkipped so the caller can log a warning.
//
// # Playlist Generation
//
// Generate playlists of the tracks a batch delivered:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("links", entries)
//	os.WriteFile("playlist.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
