package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/handiism/ytaudio-downloader/internal/audio"
	"github.com/handiism/ytaudio-downloader/internal/fetch"
	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
	"github.com/handiism/ytaudio-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents one reported stage outcome.
type ProgressEvent struct {
	Time    time.Time
	Level   ProgressLevel
	Item    string // resolved title, or the raw identifier before resolution
	Stage   model.Stage
	Message string
}

// DownloadFunc receives byte progress for the item currently downloading.
type DownloadFunc func(item string, p fetch.Progress)

// Selector resolves an identifier to its best audio-only stream.
type Selector interface {
	Select(ctx context.Context, identifier string) (*model.StreamDescriptor, error)
}

// Fetcher downloads a stream into a directory.
type Fetcher interface {
	Fetch(ctx context.Context, desc *model.StreamDescriptor, destDir string, onProgress fetch.ProgressFunc) (string, error)
}

// Transcoder converts a downloaded stream into the target format.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, destDir string) (string, error)
}

// ArtworkFetcher downloads cover art for a stream.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, desc *model.StreamDescriptor, destDir string) (string, error)
}

// Normalizer makes fetched artwork square, in place.
type Normalizer interface {
	Normalize(ctx context.Context, path string) error
}

// Embedder writes the tag block.
type Embedder interface {
	Embed(audioPath string, desc *model.StreamDescriptor, artworkPath string) (audio.EmbedResult, error)
}

// Stages holds one implementation per pipeline stage.
type Stages struct {
	Selector   Selector
	Fetcher    Fetcher
	Transcoder Transcoder
	Artwork    ArtworkFetcher
	Normalizer Normalizer
	Embedder   Embedder
}

// Options controls a Manager.
type Options struct {
	AudioDir string
	ImageDir string

	// KeepArtwork leaves the normalized image in ImageDir after embedding.
	KeepArtwork bool

	// DryRun stops every item after it resolves.
	DryRun bool

	// Playlist, when non-nil, writes <AudioDir>/playlist.<ext> after the
	// batch, listing delivered items in input order.
	Playlist      *audio.PlaylistCreator
	PlaylistTitle string

	// OnDownload, when non-nil, receives byte progress during downloads.
	OnDownload DownloadFunc

	// OnResult, when non-nil, receives each item's result as it finishes.
	OnResult func(Result)
}

// Result is the outcome of one item.
type Result struct {
	Item            model.SourceItem
	RunID           string
	Descriptor      *model.StreamDescriptor
	Stage           model.Stage // StageDone or StageFailed
	AudioPath       string
	ArtworkPath     string
	ArtworkEmbedded bool
	Warnings        []*model.StageError
	Err             *model.StageError
}

// OK reports whether the item was delivered (or, in a dry run, resolved).
func (r Result) OK() bool {
	return r.Stage == model.StageDone
}

// Label is the best human-readable name for the item.
func (r Result) Label() string {
	if r.Descriptor != nil && r.Descriptor.Title != "" {
		return r.Descriptor.Title
	}
	return r.Item.Identifier
}

// FailedAt returns the stage the item failed in, and false if it did not
// fail.
func (r Result) FailedAt() (model.Stage, bool) {
	if r.Err == nil {
		return 0, false
	}
	return r.Err.Stage, true
}

// Manager runs items through the pipeline, one at a time, in input order.
type Manager struct {
	stages     Stages
	opts       Options
	onProgress func(ProgressEvent)
	now        func() time.Time

	// claimed holds the lower-cased base names handed out in this run.
	claimed map[string]bool
}

// NewManager creates a new Manager.
func NewManager(stages Stages, opts Options, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		stages:     stages,
		opts:       opts,
		onProgress: onProgress,
		now:        time.Now,
	}
}

// Run processes items sequentially and returns one Result per processed
// item.
//
// A failing item never stops the batch. ctx is only checked between
// items: once it is done, Run stops advancing and returns the results so
// far together with ctx.Err(). Work already in flight is never
// interrupted.
func (m *Manager) Run(ctx context.Context, items []model.SourceItem) ([]Result, error) {
	runID := uuid.NewString()
	m.claimed = make(map[string]bool)
	stageCtx := context.WithoutCancel(ctx)

	m.progress(ProgressEvent{Level: LevelVerbose, Message: fmt.Sprintf("Run %s: %d item(s)", runID, len(items))})

	results := make([]Result, 0, len(items))
	var runErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			m.progress(ProgressEvent{Level: LevelWarning, Message: fmt.Sprintf("Stopped before %s: %v", item, err)})
			runErr = err
			break
		}

		state := m.process(stageCtx, item)
		result := Result{
			Item:            item,
			RunID:           runID,
			Descriptor:      state.Descriptor,
			Stage:           state.Stage,
			AudioPath:       state.AudioPath,
			ArtworkPath:     state.ArtworkPath,
			ArtworkEmbedded: state.ArtworkEmbedded,
			Warnings:        state.Warnings,
			Err:             state.Failure,
		}
		results = append(results, result)
		if m.opts.OnResult != nil {
			m.opts.OnResult(result)
		}
	}

	if m.opts.Playlist != nil && !m.opts.DryRun {
		m.writePlaylist(stageCtx, results)
	}

	return results, runErr
}

// process drives one item's state machine to a terminal stage.
func (m *Manager) process(ctx context.Context, item model.SourceItem) *model.ItemState {
	state := model.NewItemState(item)
	for !state.Stage.Terminal() {
		m.step(ctx, state)
	}
	return state
}

// step runs the current stage and advances state.
func (m *Manager) step(ctx context.Context, state *model.ItemState) {
	switch state.Stage {
	case model.StageResolving:
		m.resolve(ctx, state)
	case model.StageDownloading:
		m.download(ctx, state)
	case model.StageTranscoding:
		m.transcode(ctx, state)
	case model.StageFetchingArt:
		m.fetchArtwork(ctx, state)
	case model.StageNormalizing:
		m.normalize(ctx, state)
	case model.StageEmbedding:
		m.embed(state)
	default:
		m.fail(state, fmt.Errorf("unexpected stage %d", state.Stage))
	}
}

func (m *Manager) resolve(ctx context.Context, state *model.ItemState) {
	m.event(state, LevelVerbose, "Resolving %s", state.Item)

	desc, err := m.stages.Selector.Select(ctx, state.Item.Identifier)
	if err != nil {
		m.fail(state, err)
		return
	}
	state.Descriptor = desc

	m.event(state, LevelInfo, "Resolved %q by %s: %d kbps, %s", desc.Title, desc.Author, desc.Bitrate/1000, sizeText(desc.Size))

	if m.opts.DryRun {
		state.Stage = model.StageDone
		return
	}
	state.Stage = model.StageDownloading
}

func (m *Manager) download(ctx context.Context, state *model.ItemState) {
	label := state.Label()

	name, err := m.claimName(state.Descriptor)
	if err != nil {
		m.fail(state, fmt.Errorf("%w: choose file name: %w", model.ErrDownload, err))
		return
	}
	if name != state.Descriptor.FileBase() {
		m.event(state, LevelInfo, "%q is already taken, saving as %q", state.Descriptor.FileBase(), name)
	}
	state.Descriptor.Name = name

	var onProgress fetch.ProgressFunc
	if m.opts.OnDownload != nil {
		onProgress = func(p fetch.Progress) {
			m.opts.OnDownload(label, p)
		}
	}

	path, err := m.stages.Fetcher.Fetch(ctx, state.Descriptor, m.opts.AudioDir, onProgress)
	if err != nil {
		m.fail(state, err)
		return
	}
	state.DownloadPath = path

	m.event(state, LevelVerbose, "Downloaded %s", filepath.Base(path))
	state.Stage = model.StageTranscoding
}

func (m *Manager) transcode(ctx context.Context, state *model.ItemState) {
	out, err := m.stages.Transcoder.Transcode(ctx, state.DownloadPath, m.opts.AudioDir)
	if err != nil {
		if ioutils.Exists(state.DownloadPath) {
			err = fmt.Errorf("%w (source kept at %s)", err, state.DownloadPath)
		}
		m.fail(state, err)
		return
	}
	state.AudioPath = out
	state.DownloadPath = ""

	m.event(state, LevelVerbose, "Transcoded to %s", filepath.Base(out))
	state.Stage = model.StageFetchingArt
}

func (m *Manager) fetchArtwork(ctx context.Context, state *model.ItemState) {
	path, err := m.stages.Artwork.Fetch(ctx, state.Descriptor, m.opts.ImageDir)
	if err != nil {
		m.fail(state, err)
		return
	}
	state.ArtworkPath = path

	m.event(state, LevelVerbose, "Fetched artwork %s", filepath.Base(path))
	state.Stage = model.StageNormalizing
}

func (m *Manager) normalize(ctx context.Context, state *model.ItemState) {
	if err := m.stages.Normalizer.Normalize(ctx, state.ArtworkPath); err != nil {
		m.fail(state, err)
		return
	}

	m.event(state, LevelVerbose, "Normalized artwork")
	state.Stage = model.StageEmbedding
}

func (m *Manager) embed(state *model.ItemState) {
	res, err := m.stages.Embedder.Embed(state.AudioPath, state.Descriptor, state.ArtworkPath)
	if err != nil {
		m.fail(state, err)
		return
	}
	state.ArtworkEmbedded = res.ArtworkEmbedded

	if res.ArtworkSkipped != nil {
		warning := &model.StageError{Stage: model.StageEmbedding, Err: res.ArtworkSkipped}
		state.Warnings = append(state.Warnings, warning)
		m.event(state, LevelWarning, "Tagged without artwork: %v", res.ArtworkSkipped)
	}

	if !m.opts.KeepArtwork && state.ArtworkPath != "" {
		if err := ioutils.RemoveIfExists(state.ArtworkPath); err != nil {
			m.event(state, LevelWarning, "Could not remove artwork: %v", err)
		}
		state.ArtworkPath = ""
	}

	if state.ArtworkEmbedded {
		m.event(state, LevelSuccess, "Done: %s (with artwork)", filepath.Base(state.AudioPath))
	} else {
		m.event(state, LevelSuccess, "Done: %s", filepath.Base(state.AudioPath))
	}
	state.Stage = model.StageDone
}

// claimName picks the base name for desc's output files. The sanitized
// title is used unless this run already handed it out or a file with that
// stem sits in AudioDir or ImageDir. Then " [<id>]" is appended, followed
// by a counter if that is taken too.
func (m *Manager) claimName(desc *model.StreamDescriptor) (string, error) {
	base := desc.FileBase()
	id := ioutils.SanitizeFileName(desc.ID)

	for n := 1; ; n++ {
		name := base
		switch {
		case n == 2:
			name = fmt.Sprintf("%s [%s]", base, id)
		case n > 2:
			name = fmt.Sprintf("%s [%s] (%d)", base, id, n-1)
		}

		taken, err := m.nameTaken(name)
		if err != nil {
			return "", err
		}
		if !taken {
			m.claimed[strings.ToLower(name)] = true
			return name, nil
		}
	}
}

func (m *Manager) nameTaken(name string) (bool, error) {
	if m.claimed[strings.ToLower(name)] {
		return true, nil
	}
	for _, dir := range []string{m.opts.AudioDir, m.opts.ImageDir} {
		taken, err := ioutils.HasStem(dir, name)
		if err != nil || taken {
			return taken, err
		}
	}
	return false, nil
}

// fail routes a stage failure. Artwork stages degrade to embedding without
// artwork; every other stage fails the item.
func (m *Manager) fail(state *model.ItemState, err error) {
	stageErr := &model.StageError{Stage: state.Stage, Err: err}

	if state.Stage.Degrading() {
		state.Warnings = append(state.Warnings, stageErr)
		state.ArtworkPath = ""
		m.event(state, LevelWarning, "Continuing without artwork: %v", err)
		state.Stage = model.StageEmbedding
		return
	}

	state.Failure = stageErr
	m.event(state, LevelError, "Failed: %v", err)
	state.Stage = model.StageFailed
}

func (m *Manager) writePlaylist(ctx context.Context, results []Result) {
	var entries []audio.PlaylistEntry
	for _, r := range results {
		if !r.OK() || r.AudioPath == "" {
			continue
		}
		entries = append(entries, audio.PlaylistEntry{
			Path:     r.AudioPath,
			Title:    r.Descriptor.Title,
			Artist:   r.Descriptor.Author,
			Duration: r.Descriptor.Duration,
		})
	}
	if len(entries) == 0 {
		return
	}

	path := filepath.Join(m.opts.AudioDir, "playlist."+m.opts.Playlist.Format().Ext())
	content := m.opts.Playlist.CreatePlaylist(m.opts.PlaylistTitle, entries)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Level: LevelWarning, Message: fmt.Sprintf("Error creating playlist: %v", err)})
		return
	}
	m.progress(ProgressEvent{Level: LevelSuccess, Message: fmt.Sprintf("Created playlist %s (%d tracks)", path, len(entries))})
}

func (m *Manager) event(state *model.ItemState, level ProgressLevel, format string, args ...any) {
	m.progress(ProgressEvent{
		Level:   level,
		Item:    state.Label(),
		Stage:   state.Stage,
		Message: fmt.Sprintf(format, args...),
	})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	if event.Time.IsZero() {
		event.Time = m.now()
	}
	m.onProgress(event)
}

func sizeText(size int64) string {
	if size <= 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(size))
}
