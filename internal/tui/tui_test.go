package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/ytaudio-downloader/internal/config"
	"github.com/handiism/ytaudio-downloader/internal/download"
	"github.com/handiism/ytaudio-downloader/internal/model"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestNewModelUsesConfiguredInput(t *testing.T) {
	s := config.DefaultSettings()
	s.InputFile = "mix.txt"
	s.CreatePlaylist = true

	m := NewModel(s)

	assert.Equal(t, StateInput, m.state)
	assert.Equal(t, "mix.txt", m.textInput.Value())
	assert.True(t, m.playlist)
}

func TestOptionToggles(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.True(t, m.playlist)
	assert.True(t, m.dryRun)
	assert.True(t, m.verbose)
	assert.Contains(t, m.View(), "[×] Dry run")
}

func TestInitErrorShowsErrorState(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: errors.New("links.txt has no identifiers")})

	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "links.txt has no identifiers")
}

func TestInitializeDownloadMissingFile(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.textInput.SetValue(filepath.Join(t.TempDir(), "missing.txt"))

	msg := m.initializeDownload()()

	done, ok := msg.(InitDoneMsg)
	require.True(t, ok)
	assert.Error(t, done.Err)
}

func TestInitializeDownloadDryRunTakesLock(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(input, []byte("abc123\n\n# comment\nxyz789\n"), 0644))

	s := config.DefaultSettings()
	s.AudioDir = filepath.Join(dir, "downloads")
	s.ImageDir = filepath.Join(dir, "downloads", "images")
	m := NewModel(s)
	m.textInput.SetValue(input)
	m.dryRun = true

	msg := m.initializeDownload()()

	done, ok := msg.(InitDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Len(t, done.Items, 2)
	require.NotNil(t, done.Lock)
	assert.DirExists(t, s.ImageDir)
	require.NoError(t, done.Lock.Release())
}

func TestProgressMessagesUpdateLogs(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateDownloading

	at := time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Time: at, Level: download.LevelVerbose, Item: "Song", Message: "hidden"}})
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Time: at, Level: download.LevelError, Item: "bad_id", Stage: model.StageResolving, Message: "Failed: private"}})

	require.Len(t, m.logs, 1)
	assert.Equal(t, "[14:03:09] bad_id: Failed: private", m.logs[0].Message)
	assert.Equal(t, download.LevelError, m.logs[0].Level)
}

func TestLogsAreCapped(t *testing.T) {
	var logs []LogEntry
	for i := 0; i < 25; i++ {
		logs = appendLog(logs, LogEntry{Message: "x"})
	}
	assert.Len(t, logs, 10)
}

func TestDownloadDoneStates(t *testing.T) {
	results := []download.Result{
		{Item: model.SourceItem{Identifier: "abc123"}, Stage: model.StageDone},
		{Item: model.SourceItem{Identifier: "bad_id"}, Stage: model.StageFailed,
			Err: &model.StageError{Stage: model.StageResolving, Err: model.ErrResolution}},
	}

	m := NewModel(config.DefaultSettings())
	m.state = StateDownloading
	m = update(t, m, DownloadDoneMsg{Results: results})
	assert.Equal(t, StateComplete, m.state)
	view := m.View()
	assert.Contains(t, view, "Delivered: 1")
	assert.Contains(t, view, "bad_id")

	m = NewModel(config.DefaultSettings())
	m.state = StateDownloading
	m = update(t, m, DownloadDoneMsg{Results: results[:1], Err: context.Canceled})
	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, errCancelled)
}

func TestCountResults(t *testing.T) {
	ok, failed := countResults([]download.Result{
		{Stage: model.StageDone},
		{Stage: model.StageFailed},
		{Stage: model.StageDone},
	})
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}
