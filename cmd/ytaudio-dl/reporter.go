package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/handiism/ytaudio-downloader/internal/download"
	"github.com/handiism/ytaudio-downloader/internal/fetch"
)

// reporter prints timestamped, leveled status lines and one progress bar
// per download.
type reporter struct {
	out      io.Writer
	verbose  bool
	colorize bool
	colors   map[download.ProgressLevel]*color.Color

	bar     *progressbar.ProgressBar
	barItem string
}

func newReporter(out io.Writer, verbose, colorize bool) *reporter {
	colors := map[download.ProgressLevel]*color.Color{
		download.LevelVerbose: color.New(color.FgWhite, color.Italic),
		download.LevelInfo:    color.New(color.FgCyan),
		download.LevelSuccess: color.New(color.FgHiGreen),
		download.LevelWarning: color.New(color.FgYellow),
		download.LevelError:   color.New(color.FgHiRed, color.Bold),
	}
	for _, c := range colors {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &reporter{out: out, verbose: verbose, colorize: colorize, colors: colors}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func levelPrefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "✗"
	case download.LevelWarning:
		return "!"
	case download.LevelSuccess:
		return "✓"
	case download.LevelInfo:
		return "›"
	default:
		return " "
	}
}

func formatLine(e download.ProgressEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ", e.Time.Format("15:04:05"), levelPrefix(e.Level))
	if e.Item != "" {
		b.WriteString(e.Item)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (r *reporter) banner() {
	fmt.Fprintln(r.out, "🎵 YouTube Audio Downloader")
	fmt.Fprintln(r.out, strings.Repeat("━", 40))
}

// event is the download.Manager progress callback.
func (r *reporter) event(e download.ProgressEvent) {
	if e.Level == download.LevelVerbose && !r.verbose {
		return
	}
	r.finishBar()
	r.colors[e.Level].Fprintln(r.out, formatLine(e))
}

// download is the per-download byte progress callback. Bars are drawn
// only when terminal styling is on.
func (r *reporter) download(item string, p fetch.Progress) {
	if !r.colorize {
		return
	}

	if r.bar == nil || r.barItem != item {
		r.finishBar()
		total := p.Total
		if total <= 0 {
			total = -1
		}
		r.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(item),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		r.barItem = item
	}

	_ = r.bar.Set64(p.Received)
	if p.Done() {
		r.finishBar()
	}
}

func (r *reporter) finishBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
	r.barItem = ""
}

func (r *reporter) footer(results []download.Result) {
	var ok, failed int
	var bytes uint64
	for _, res := range results {
		if !res.OK() {
			failed++
			continue
		}
		ok++
		if res.AudioPath != "" {
			if info, err := os.Stat(res.AudioPath); err == nil {
				bytes += uint64(info.Size())
			}
		}
	}

	line := fmt.Sprintf("✨ %d delivered, %d failed", ok, failed)
	if bytes > 0 {
		line += fmt.Sprintf(" (%s)", humanize.Bytes(bytes))
	}
	level := download.LevelSuccess
	if failed > 0 {
		level = download.LevelWarning
	}
	fmt.Fprintln(r.out, strings.Repeat("━", 40))
	r.colors[level].Fprintln(r.out, line)
}
