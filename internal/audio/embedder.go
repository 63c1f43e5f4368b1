package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/ytaudio-downloader/internal/model"
)

// artworkMIMETypes maps artwork file extensions to the MIME type written
// into the APIC frame. Extensions not listed are rejected.
var artworkMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ArtworkMIMEType returns the MIME type for an artwork path, based on its
// extension (case-insensitive).
func ArtworkMIMEType(path string) (string, bool) {
	mimeType, ok := artworkMIMETypes[strings.ToLower(filepath.Ext(path))]
	return mimeType, ok
}

// EmbedResult describes what ended up in the tag block.
type EmbedResult struct {
	// ArtworkEmbedded is true when an APIC front cover frame was written.
	ArtworkEmbedded bool

	// ArtworkSkipped explains why artwork that was offered was not
	// embedded (missing file, unreadable file, unsupported extension).
	ArtworkSkipped error
}

// Embedder writes ID3 tags to audio files.
//
// Embedder uses the id3v2 library to set:
//   - Title (TIT2) and Artist (TPE1), verbatim from the stream descriptor
//   - Cover Art (attached picture, front cover)
//
// Example:
//
//	embedder := NewEmbedder()
//
//	res, err := embedder.Embed("/music/Song.mp3", desc, "/images/Song.jpg")
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", desc.Title, err)
//	}
//	if res.ArtworkSkipped != nil {
//	    log.Printf("No cover art: %v", res.ArtworkSkipped)
//	}
type Embedder struct {
	version byte
}

// NewEmbedder creates an Embedder writing ID3v2.4 tags.
func NewEmbedder() *Embedder {
	return &Embedder{version: 4}
}

// Embed writes title, artist and (optionally) cover art to audioPath.
//
// This method:
//  1. Opens the existing audio file, parsing its tag block or starting an
//     empty one if it has none
//  2. Sets title and artist from desc
//  3. Embeds artworkPath as front cover if it is non-empty, exists and has
//     a supported extension
//  4. Saves the tag block
//
// Artwork problems are reported in EmbedResult.ArtworkSkipped and never
// fail the call. Open or save failures of the audio file return an error
// wrapping model.ErrMetadata.
func (e *Embedder) Embed(audioPath string, desc *model.StreamDescriptor, artworkPath string) (EmbedResult, error) {
	var res EmbedResult

	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		return res, fmt.Errorf("%w: open %s: %w", model.ErrMetadata, audioPath, err)
	}
	defer tag.Close()

	tag.SetVersion(e.version)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(desc.Title)
	tag.SetArtist(desc.Author)

	if artworkPath != "" {
		if err := e.updateArtwork(tag, artworkPath); err != nil {
			res.ArtworkSkipped = err
		} else {
			res.ArtworkEmbedded = true
		}
	}

	if err := tag.Save(); err != nil {
		return EmbedResult{}, fmt.Errorf("%w: save %s: %w", model.ErrMetadata, audioPath, err)
	}

	return res, nil
}

// updateArtwork embeds cover art as an attached picture frame.
func (e *Embedder) updateArtwork(tag *id3v2.Tag, artworkPath string) error {
	mimeType, ok := ArtworkMIMEType(artworkPath)
	if !ok {
		return fmt.Errorf("unsupported artwork extension %q", filepath.Ext(artworkPath))
	}

	artwork, err := os.ReadFile(artworkPath)
	if err != nil {
		return fmt.Errorf("read artwork: %w", err)
	}

	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
	return nil
}
