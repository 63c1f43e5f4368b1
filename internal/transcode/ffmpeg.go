package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/floostack/transcoder/ffmpeg"
)

// ErrEncoderNotFound is returned when the ffmpeg or ffprobe executable
// cannot be located.
var ErrEncoderNotFound = errors.New("encoder executable not found")

// FFmpegEncoder runs ffmpeg as a subprocess.
type FFmpegEncoder struct {
	FfmpegBinPath  string
	FfprobeBinPath string
}

// NewFFmpegEncoder creates an encoder using the given executables. Bare
// names are looked up on PATH when Encode runs.
func NewFFmpegEncoder(ffmpegBin, ffprobeBin string) *FFmpegEncoder {
	return &FFmpegEncoder{FfmpegBinPath: ffmpegBin, FfprobeBinPath: ffprobeBin}
}

// Binaries returns the resolved ffmpeg and ffprobe paths.
func (e *FFmpegEncoder) Binaries() (ffmpegPath, ffprobePath string, err error) {
	ffmpegPath, err = exec.LookPath(e.FfmpegBinPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrEncoderNotFound, err)
	}
	ffprobePath, err = exec.LookPath(e.FfprobeBinPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrEncoderNotFound, err)
	}
	return ffmpegPath, ffprobePath, nil
}

// Encode converts inputPath to outputPath. The container is picked by
// ffmpeg from the output extension; the audio bitrate is fixed.
func (e *FFmpegEncoder) Encode(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error {
	ffmpegPath, ffprobePath, err := e.Binaries()
	if err != nil {
		return err
	}

	overwrite := true
	opts := &ffmpeg.Options{
		Overwrite: &overwrite,
		ExtraArgs: map[string]interface{}{
			"-b:a": fmt.Sprintf("%dk", bitrateKbps),
		},
	}

	trans := ffmpeg.
		New(&ffmpeg.Config{
			ProgressEnabled: true,
			FfmpegBinPath:   ffmpegPath,
			FfprobeBinPath:  ffprobePath,
		}).
		Input(inputPath).
		Output(outputPath).
		WithContext(&ctx)

	progress, err := trans.Start(opts)
	if err != nil {
		return parseFfmpegError(err)
	}

	for range progress {
	}

	cmd := trans.GetRunningCmdInstance()
	if cmd == nil || cmd.ProcessState == nil {
		return errors.New("ffmpeg did not run")
	}
	if !cmd.ProcessState.Success() {
		return fmt.Errorf("ffmpeg exited with code %d", cmd.ProcessState.ExitCode())
	}
	return nil
}

var ffmpegMessage = regexp.MustCompile(`(?s)message: ({.*})`)

// parseFfmpegError picks the JSON encoded message out of the transcoder's
// error, which otherwise carries ffmpeg's whole build banner.
func parseFfmpegError(err error) error {
	groups := ffmpegMessage.FindStringSubmatch(err.Error())
	if len(groups) < 2 {
		return err
	}

	var out struct {
		Error struct {
			String string `json:"string"`
		} `json:"error"`
	}
	if jsonErr := json.Unmarshal([]byte(groups[1]), &out); jsonErr != nil || out.Error.String == "" {
		return errors.New(groups[1])
	}
	return errors.New(out.Error.String)
}
