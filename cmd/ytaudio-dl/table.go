package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/handiism/ytaudio-downloader/internal/download"
)

// summaryColumns lays out the end-of-batch table, matched to headers by
// name. Sizes are right-aligned so the units line up.
var summaryColumns = []table.ColumnConfig{
	{Name: "Identifier", WidthMax: 48},
	{Name: "Title", WidthMax: 48},
	{Name: "Outcome"},
	{Name: "Failed stage"},
	{Name: "Size", Align: text.AlignRight, AlignHeader: text.AlignRight},
}

// summaryRows builds one row per result: identifier, title, outcome,
// failed stage, size.
func summaryRows(results []download.Result, dryRun bool) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		title := ""
		if r.Descriptor != nil {
			title = r.Descriptor.Title
		}

		outcome, failedAt, size := "failed", "", ""
		switch {
		case r.OK() && dryRun:
			outcome = "resolved"
			if r.Descriptor != nil && r.Descriptor.Size > 0 {
				size = humanize.Bytes(uint64(r.Descriptor.Size))
			}
		case r.OK():
			outcome = "done"
			if !r.ArtworkEmbedded {
				outcome = "done, no artwork"
			}
			if info, err := os.Stat(r.AudioPath); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
		default:
			if stage, ok := r.FailedAt(); ok {
				failedAt = stage.String()
			}
		}

		rows = append(rows, []string{r.Item.Identifier, title, outcome, failedAt, size})
	}
	return rows
}

func renderSummary(results []download.Result, dryRun bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(summaryColumns))
	for i, c := range summaryColumns {
		header[i] = c.Name
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(summaryColumns)

	for _, cells := range summaryRows(results, dryRun) {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
