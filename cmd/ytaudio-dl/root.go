package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/ytaudio-downloader/internal/config"
	"github.com/handiism/ytaudio-downloader/internal/download"
	"github.com/handiism/ytaudio-downloader/internal/model"
	"github.com/handiism/ytaudio-downloader/internal/preflight"
)

// flagValues holds every command-line override.
type flagValues struct {
	configPath     string
	input          string
	audioDir       string
	imageDir       string
	bitrate        int
	playlist       bool
	playlistFormat string
	keepArtwork    bool
	verbose        bool
	dryRun         bool
	noColor        bool
}

func newRootCommand() *cobra.Command {
	var flags flagValues

	rootCmd := &cobra.Command{
		Use:   "ytaudio-dl [identifier...]",
		Short: "Download YouTube audio as tagged MP3 files",
		Long: `ytaudio-dl reads YouTube links or video ids (one per line) from an input
list, or from the command line, and for each one downloads the best
audio-only stream, transcodes it to MP3 and tags it with the title,
author and a square cover made from the video thumbnail.

A failing item never stops the batch. Exit status is 0 when every item
was delivered, 2 when some failed and 1 when the batch could not run.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, &flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")

	f := rootCmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Input list, one link or id per line (overrides config)")
	f.StringVar(&flags.audioDir, "audio-dir", "", "Audio output directory (overrides config)")
	f.StringVar(&flags.imageDir, "image-dir", "", "Artwork output directory (overrides config)")
	f.IntVar(&flags.bitrate, "bitrate", 0, "Target bitrate in kbit/s (overrides config)")
	f.BoolVar(&flags.playlist, "playlist", false, "Write a playlist of delivered files")
	f.StringVar(&flags.playlistFormat, "playlist-format", "", "Playlist format: m3u, pls, wpl or zpl")
	f.BoolVar(&flags.keepArtwork, "keep-artwork", true, "Keep normalized artwork in the image directory")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose output")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Resolve identifiers without downloading")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newConfigCommand(&flags))

	return rootCmd
}

// loadSettings resolves the config file, applies environment overrides
// and then any flag the user set explicitly.
func loadSettings(cmd *cobra.Command, flags *flagValues) (*config.Settings, string, bool, error) {
	path := strings.TrimSpace(flags.configPath)
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		path = defaultPath
	}

	settings, exists, err := config.Load(path)
	if err != nil {
		return nil, "", false, err
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		settings.InputFile = flags.input
	}
	if changed("audio-dir") {
		settings.AudioDir = flags.audioDir
		if !changed("image-dir") {
			settings.ImageDir = filepath.Join(flags.audioDir, "images")
		}
	}
	if changed("image-dir") {
		settings.ImageDir = flags.imageDir
	}
	if changed("bitrate") {
		settings.TargetBitrateKbps = flags.bitrate
	}
	if changed("playlist") {
		settings.CreatePlaylist = flags.playlist
	}
	if changed("playlist-format") {
		settings.PlaylistFormat = flags.playlistFormat
	}
	if changed("keep-artwork") {
		settings.KeepArtwork = flags.keepArtwork
	}

	if err := settings.Validate(); err != nil {
		return nil, "", false, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, path, exists, nil
}

// readItems takes identifiers from args when given, otherwise from the
// input list.
func readItems(settings *config.Settings, args []string) ([]model.SourceItem, string, error) {
	if len(args) > 0 {
		items, err := model.ParseSourceList(strings.NewReader(strings.Join(args, "\n")))
		return items, "command line", err
	}

	file, err := os.Open(settings.InputFile)
	if err != nil {
		return nil, "", fmt.Errorf("open input list: %w", err)
	}
	defer file.Close()

	items, err := model.ParseSourceList(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", settings.InputFile, err)
	}
	return items, settings.InputFile, nil
}

func runBatch(cmd *cobra.Command, flags *flagValues, args []string) error {
	settings, _, _, err := loadSettings(cmd, flags)
	if err != nil {
		return &exitError{code: exitBatchError, err: err}
	}

	items, source, err := readItems(settings, args)
	if err != nil {
		return &exitError{code: exitBatchError, err: err}
	}
	if len(items) == 0 {
		return &exitError{code: exitBatchError, err: fmt.Errorf("no identifiers in %s", source)}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rep := newReporter(out, flags.verbose, !flags.noColor && isTerminal(out))

	stages, encoder := download.NewStages(settings)
	checks := preflight.Checks{Dirs: []string{settings.AudioDir, settings.ImageDir}}
	if !flags.dryRun {
		checks.Encoder = encoder
	}
	report, err := preflight.Run(ctx, checks)
	if err != nil {
		return &exitError{code: exitBatchError, err: fmt.Errorf("preflight: %w", err)}
	}
	lock, err := preflight.AcquireLock(settings.AudioDir)
	if err != nil {
		return &exitError{code: exitBatchError, err: err}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}()

	rep.banner()
	if report.FfmpegPath != "" {
		rep.event(download.ProgressEvent{Level: download.LevelVerbose, Message: "Using " + report.FfmpegPath})
	}
	rep.event(download.ProgressEvent{Level: download.LevelInfo, Message: fmt.Sprintf("%d item(s) from %s", len(items), source)})

	opts := download.NewOptions(settings, source)
	opts.DryRun = flags.dryRun
	opts.OnDownload = rep.download

	manager := download.NewManager(stages, opts, rep.event)
	results, runErr := manager.Run(ctx, items)

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(results, flags.dryRun))
	rep.footer(results)

	if runErr != nil {
		rep.event(download.ProgressEvent{Level: download.LevelWarning, Message: "Interrupted, remaining items skipped"})
		return &exitError{code: exitBatchError, err: runErr}
	}
	for _, r := range results {
		if !r.OK() {
			return &exitError{code: exitItemsFailed}
		}
	}
	return nil
}
