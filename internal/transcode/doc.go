// Package transcode converts downloaded audio into the delivery format.
//
// A Transcoder owns the naming and cleanup rules; the actual conversion is
// delegated to an Encoder. FFmpegEncoder runs the ffmpeg executable through
// github.com/floostack/transcoder:
//
//	enc := transcode.NewFFmpegEncoder("/usr/bin/ffmpeg", "/usr/bin/ffprobe")
//	tc := transcode.NewTranscoder(enc, "mp3", 320)
//
//	out, err := tc.Transcode(ctx, "/music/Song.webm", "/music")
//	// out == "/music/Song.mp3", /music/Song.webm has been deleted
//
// On failure the partial output is removed and the input is left in place.
package transcode
