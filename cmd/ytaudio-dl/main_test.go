package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/ytaudio-downloader/internal/download"
	"github.com/handiism/ytaudio-downloader/internal/model"
	"github.com/handiism/ytaudio-downloader/internal/preflight"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitItemsFailed, exitCode(&exitError{code: exitItemsFailed}))
	assert.Equal(t, exitBatchError, exitCode(&exitError{code: exitBatchError, err: context.Canceled}))
	assert.Equal(t, exitBatchError, exitCode(errors.New("unknown flag: --nope")))
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytaudio", "config.toml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration to "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--overwrite", path)
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+path)
	assert.Contains(t, out, "target_bitrate_kbps = 320")
	assert.Contains(t, out, "maxresdefault.jpg")
}

func TestConfigShowEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("audio_dir = \"from-file\"\n"), 0644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "show", "-c", path})
	t.Setenv("YTAUDIO_AUDIO_DIR", "from-env")

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "from-env")
	assert.NotContains(t, out.String(), "from-file")
}

func TestRunRejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(input, []byte("\n# nothing yet\n\n"), 0644))

	_, err := execute(t, "--config", filepath.Join(dir, "none.toml"), "--input", input, "--audio-dir", filepath.Join(dir, "out"))

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitBatchError, ee.code)
	assert.ErrorContains(t, err, "no identifiers")
}

func TestRunRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config", filepath.Join(dir, "none.toml"), "--input", filepath.Join(dir, "missing.txt"))

	assert.ErrorContains(t, err, "open input list")
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config", filepath.Join(dir, "none.toml"), "--bitrate", "0", "abc123")

	assert.ErrorContains(t, err, "invalid configuration")
}

func TestRunAcceptsIdentifierArgs(t *testing.T) {
	dir := t.TempDir()
	audioDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(audioDir, 0755))

	held, err := preflight.AcquireLock(audioDir)
	require.NoError(t, err)
	defer held.Release()

	// The run gets through flag parsing, item reading and preflight, then
	// stops at the lock before anything touches the network.
	_, err = execute(t, "--config", filepath.Join(dir, "none.toml"), "--audio-dir", audioDir, "--dry-run", "abc123", "https://youtu.be/xyz789")

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitBatchError, ee.code)
	assert.ErrorIs(t, err, preflight.ErrLocked)
	assert.DirExists(t, filepath.Join(audioDir, "images"))
}

func TestReadItemsFromArgs(t *testing.T) {
	items, source, err := readItems(nil, []string{"https://youtu.be/abc123", " ", "xyz789"})
	require.NoError(t, err)
	assert.Equal(t, "command line", source)
	require.Len(t, items, 2)
	assert.Equal(t, "https://youtu.be/abc123", items[0].Identifier)
	assert.Equal(t, "xyz789", items[1].Identifier)
}

func TestFormatLine(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 4, 5, 0, time.UTC)

	line := formatLine(download.ProgressEvent{Time: at, Level: download.LevelError, Item: "bad_id", Message: "Failed: resolve"})
	assert.Equal(t, "[09:04:05] ✗ bad_id: Failed: resolve", line)

	line = formatLine(download.ProgressEvent{Time: at, Level: download.LevelInfo, Message: "2 item(s) from links.txt"})
	assert.Equal(t, "[09:04:05] › 2 item(s) from links.txt", line)
}

func TestReporterFiltersVerbose(t *testing.T) {
	var out bytes.Buffer
	rep := newReporter(&out, false, false)

	rep.event(download.ProgressEvent{Level: download.LevelVerbose, Message: "hidden"})
	rep.event(download.ProgressEvent{Level: download.LevelWarning, Item: "Song", Message: "Continuing without artwork"})

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "! Song: Continuing without artwork")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestSummaryRows(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "Song.mp3")
	require.NoError(t, os.WriteFile(audioPath, make([]byte, 2048), 0644))

	results := []download.Result{
		{
			Item:            model.SourceItem{Identifier: "abc123"},
			Descriptor:      &model.StreamDescriptor{Title: "Song"},
			Stage:           model.StageDone,
			AudioPath:       audioPath,
			ArtworkEmbedded: true,
		},
		{
			Item:       model.SourceItem{Identifier: "noart01"},
			Descriptor: &model.StreamDescriptor{Title: "Plain"},
			Stage:      model.StageDone,
			AudioPath:  filepath.Join(dir, "Plain.mp3"),
		},
		{
			Item:  model.SourceItem{Identifier: "bad_id"},
			Stage: model.StageFailed,
			Err:   &model.StageError{Stage: model.StageResolving, Err: model.ErrResolution},
		},
	}

	rows := summaryRows(results, false)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"abc123", "Song", "done", "", "2.0 kB"}, rows[0])
	assert.Equal(t, []string{"noart01", "Plain", "done, no artwork", "", ""}, rows[1])
	assert.Equal(t, []string{"bad_id", "", "failed", "resolve", ""}, rows[2])

	table := renderSummary(results, false)
	for _, want := range []string{"Identifier", "Failed stage", "abc123", "bad_id", "done, no artwork"} {
		assert.Contains(t, table, want)
	}
}

func TestSummaryRowsDryRun(t *testing.T) {
	rows := summaryRows([]download.Result{{
		Item:       model.SourceItem{Identifier: "abc123"},
		Descriptor: &model.StreamDescriptor{Title: "Song", Size: 3_500_000},
		Stage:      model.StageDone,
	}}, true)

	assert.Equal(t, []string{"abc123", "Song", "resolved", "", "3.5 MB"}, rows[0])
}
