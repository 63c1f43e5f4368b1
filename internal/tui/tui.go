// Package tui provides a Bubble Tea terminal user interface for ytaudio-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/ytaudio-downloader/internal/config"
	"github.com/handiism/ytaudio-downloader/internal/download"
	"github.com/handiism/ytaudio-downloader/internal/fetch"
	"github.com/handiism/ytaudio-downloader/internal/model"
	"github.com/handiism/ytaudio-downloader/internal/preflight"
	"github.com/handiism/ytaudio-downloader/internal/transcode"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// errCancelled is shown when the user stops a batch.
var errCancelled = errors.New("cancelled by user")

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Batch context
	ctx    context.Context
	cancel context.CancelFunc
	lock   *preflight.Lock
	events chan tea.Msg

	// Batch progress
	items       []model.SourceItem
	results     []download.Result
	currentItem string
	received    int64

	// Options
	playlist bool
	dryRun   bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. The input field starts with the
// configured input file.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "links.txt"
	ti.SetValue(settings.InputFile)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every stage outcome.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ByteProgressMsg is sent while a stream downloads.
	ByteProgressMsg struct {
		Item     string
		Progress fetch.Progress
	}

	// ItemDoneMsg is sent when an item reaches a terminal stage.
	ItemDoneMsg struct {
		Result download.Result
	}

	// InitDoneMsg is sent when the input list is read and preflight
	// checks passed.
	InitDoneMsg struct {
		Items    []model.SourceItem
		Settings *config.Settings
		Lock     *preflight.Lock
		Err      error
	}

	// DownloadDoneMsg is sent when the batch stops.
	DownloadDoneMsg struct {
		Results []download.Result
		Err     error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.releaseLock()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				// The item in flight finishes; the batch stops after it.
				m.cancel()
				m.logs = appendLog(m.logs, LogEntry{Message: "Stopping after the current item...", Level: download.LevelWarning})
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new batch
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.items = nil
				m.results = nil
				m.currentItem = ""
				m.received = 0
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = appendLog(m.logs, LogEntry{
			Message: formatEvent(msg.Event),
			Level:   msg.Event.Level,
		})

	case ByteProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Item != m.currentItem {
			m.currentItem = msg.Item
			m.progress.SetPercent(0)
		}
		if msg.Progress.Done() {
			m.received += msg.Progress.Received
		}
		cmds = append(cmds, m.progress.SetPercent(msg.Progress.Fraction()))

	case ItemDoneMsg:
		cmds = append(cmds, waitForEvent(m.events))
		m.results = append(m.results, msg.Result)

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.items = msg.Items
		m.lock = msg.Lock
		m.state = StateDownloading
		m.events = make(chan tea.Msg, 64)
		cmds = append(cmds, m.startDownload(msg.Settings), waitForEvent(m.events))

	case DownloadDoneMsg:
		m.releaseLock()
		m.results = msg.Results
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) releaseLock() {
	if m.lock != nil {
		_ = m.lock.Release()
		m.lock = nil
	}
}

// appendLog keeps only the last 10 entries.
func appendLog(logs []LogEntry, entry LogEntry) []LogEntry {
	logs = append(logs, entry)
	if len(logs) > 10 {
		logs = logs[len(logs)-10:]
	}
	return logs
}

func formatEvent(e download.ProgressEvent) string {
	ts := e.Time.Format("15:04:05")
	if e.Item == "" {
		return fmt.Sprintf("[%s] %s", ts, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, e.Item, e.Message)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 YouTube Audio Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download, transcode and tag audio from YouTube"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Input list (one link or id per line):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Dry run, resolve only (ctrl+r)\n", checkbox(m.dryRun))
	fmt.Fprintf(&b, "  %s Verbose/debug output (ctrl+o)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Audio: %s  Images: %s", m.settings.AudioDir, m.settings.ImageDir)))
	b.WriteString("\n")

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading input and checking ffmpeg..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Item %d of %d", min(len(m.results)+1, len(m.items)), len(m.items))))
	b.WriteString("\n")
	if m.currentItem != "" {
		b.WriteString(itemStyle.Render(fmt.Sprintf("  ♪ %s", m.currentItem)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")

	ok, failed := countResults(m.results)
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Done: %d | Failed: %d | Downloaded: %s",
		ok,
		failed,
		humanize.Bytes(uint64(m.received)),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	ok, failed := countResults(m.results)
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Batch Complete!\n\n"+
			"Delivered: %d\n"+
			"Failed: %d\n"+
			"Downloaded: %s",
		ok,
		failed,
		humanize.Bytes(uint64(m.received)),
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderFailures())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n\n", m.err.Error())
	}
	if len(m.results) > 0 {
		ok, failed := countResults(m.results)
		b.WriteString(infoStyle.Render(fmt.Sprintf("Before stopping: %d delivered, %d failed", ok, failed)))
		b.WriteString("\n")
		b.WriteString(m.renderFailures())
	}

	return b.String()
}

func (m Model) renderFailures() string {
	var b strings.Builder
	for _, r := range m.results {
		if r.Err == nil {
			continue
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", r.Label(), r.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+r: dry run • ctrl+o: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: stop after current item • ctrl+c: quit"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

func countResults(results []download.Result) (ok, failed int) {
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// initializeDownload reads the input list and runs preflight checks.
func (m *Model) initializeDownload() tea.Cmd {
	path := strings.TrimSpace(m.textInput.Value())

	// Apply options to a copy so the defaults survive a reset
	settings := *m.settings
	settings.InputFile = path
	settings.CreatePlaylist = m.playlist
	dryRun := m.dryRun
	ctx := m.ctx

	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return InitDoneMsg{Err: fmt.Errorf("open input list: %w", err)}
		}
		items, err := model.ParseSourceList(file)
		file.Close()
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		if len(items) == 0 {
			return InitDoneMsg{Err: fmt.Errorf("%s has no identifiers", path)}
		}

		checks := preflight.Checks{Dirs: []string{settings.AudioDir, settings.ImageDir}}
		if !dryRun {
			checks.Encoder = transcode.NewFFmpegEncoder(settings.FfmpegBinPath, settings.FfprobeBinPath)
		}
		if _, err := preflight.Run(ctx, checks); err != nil {
			return InitDoneMsg{Err: err}
		}

		lock, err := preflight.AcquireLock(settings.AudioDir)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{Items: items, Settings: &settings, Lock: lock}
	}
}

// startDownload runs the batch in the background, forwarding every
// callback to the events channel. The channel is closed once the final
// DownloadDoneMsg is queued.
func (m *Model) startDownload(settings *config.Settings) tea.Cmd {
	ctx := m.ctx
	items := m.items
	events := m.events
	dryRun := m.dryRun

	return func() tea.Msg {
		defer close(events)

		stages, _ := download.NewStages(settings)
		opts := download.NewOptions(settings, settings.InputFile)
		opts.DryRun = dryRun
		opts.OnDownload = func(item string, p fetch.Progress) {
			events <- ByteProgressMsg{Item: item, Progress: p}
		}
		opts.OnResult = func(r download.Result) {
			events <- ItemDoneMsg{Result: r}
		}

		manager := download.NewManager(stages, opts, func(event download.ProgressEvent) {
			events <- ProgressMsg{Event: event}
		})

		results, err := manager.Run(ctx, items)
		events <- DownloadDoneMsg{Results: results, Err: err}
		return nil
	}
}

// waitForEvent delivers the next batch message. It yields nothing once
// the channel is closed.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
