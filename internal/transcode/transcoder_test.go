package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/ytaudio-downloader/internal/model"
)

type fakeEncoder struct {
	err         error
	writeOutput bool
	bitrate     int
}

func (e *fakeEncoder) Encode(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error {
	e.bitrate = bitrateKbps
	if e.writeOutput {
		if err := os.WriteFile(outputPath, []byte("ID3-less mp3"), 0644); err != nil {
			return err
		}
	}
	return e.err
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("webm bytes"), 0644))
	return path
}

func TestTranscoder_Success(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Song.webm")
	enc := &fakeEncoder{writeOutput: true}

	out, err := NewTranscoder(enc, "mp3", 320).Transcode(context.Background(), input, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Song.mp3"), out)
	assert.FileExists(t, out)
	assert.NoFileExists(t, input)
	assert.Equal(t, 320, enc.bitrate)
}

func TestTranscoder_EncoderFails(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Song.webm")
	enc := &fakeEncoder{writeOutput: true, err: errors.New("exit status 1")}

	_, err := NewTranscoder(enc, "mp3", 320).Transcode(context.Background(), input, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTranscode))

	assert.FileExists(t, input)
	assert.NoFileExists(t, filepath.Join(dir, "Song.mp3"))
}

func TestTranscoder_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Song.webm")

	_, err := NewTranscoder(&fakeEncoder{}, "mp3", 320).Transcode(context.Background(), input, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTranscode))
	assert.FileExists(t, input)
}

func TestTranscoder_OutputPath(t *testing.T) {
	tc := NewTranscoder(&fakeEncoder{}, ".mp3", 320)

	assert.Equal(t, filepath.Join("out", "Song.mp3"), tc.OutputPath(filepath.Join("in", "Song.webm"), "out"))
	assert.Equal(t, filepath.Join("out", "Song.mp3"), tc.OutputPath(filepath.Join("in", "Song.mp3.src"), "out"))
	assert.Equal(t, filepath.Join("out", "Vol. 2.mp3"), tc.OutputPath(filepath.Join("in", "Vol. 2.m4a"), "out"))
}

func TestFFmpegEncoder_NotFound(t *testing.T) {
	enc := NewFFmpegEncoder("definitely-not-ffmpeg-xyz", "definitely-not-ffprobe-xyz")

	err := enc.Encode(context.Background(), "in.webm", "out.mp3", 320)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncoderNotFound))
}

func TestParseFfmpegError(t *testing.T) {
	raw := errors.New(`failed: configuration: --enable-gpl message: {"error": {"code": -2, "string": "No such file or directory"}}`)
	assert.EqualError(t, parseFfmpegError(raw), "No such file or directory")

	plain := errors.New("something else")
	assert.Equal(t, plain, parseFfmpegError(plain))
}

func TestTranscoder_KeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Song.webm")
	existing := filepath.Join(dir, "Song.mp3")
	require.NoError(t, os.WriteFile(existing, []byte("delivered earlier"), 0644))

	enc := &fakeEncoder{writeOutput: true, err: errors.New("exit status 1")}
	_, err := NewTranscoder(enc, "mp3", 320).Transcode(context.Background(), input, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTranscode))
	assert.Zero(t, enc.bitrate, "encoder must not run")

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "delivered earlier", string(data))
	assert.FileExists(t, input)
}
