// Package youtube resolves source identifiers into audio stream descriptors.
//
// The Selector asks the resolution client for every stream of a video,
// keeps the audio-only ones (audio channels, no picture) and picks the
// highest bitrate:
//
//	sel := youtube.NewSelector(&kkdai.Client{})
//	desc, err := sel.Select(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
//	switch {
//	case errors.Is(err, model.ErrResolution):
//	    // malformed, private or removed
//	case errors.Is(err, model.ErrNoAudioStream):
//	    // resolved, but nothing to download
//	}
//
// The returned descriptor's Handle opens the selected stream through the
// same client. Identifiers may be watch URLs, youtu.be short links or bare
// video ids.
package youtube
