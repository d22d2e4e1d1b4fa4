package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"mangasync/internal/match"
	"mangasync/internal/session"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func resultRow(record session.Record) []string {
	result := record.Result
	title, score := "-", "-"
	if selected, ok := result.Selected(); ok {
		title = selected.Candidate.Title
		score = strconv.FormatFloat(selected.Score.Display(), 'f', 1, 64)
	}
	targetID := "-"
	if result.SelectedID != 0 {
		targetID = strconv.FormatInt(result.SelectedID, 10)
	}
	return []string{
		result.Entry.ID,
		result.Entry.Title,
		string(result.Status),
		title,
		targetID,
		score,
		string(record.SyncState),
	}
}

func renderResults(out io.Writer, records []session.Record) {
	headers := []string{"Entry", "Source Title", "Status", "Matched Title", "Target", "Score", "Sync"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, resultRow(record))
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
}

func renderBreakdown(out io.Writer, score match.MatchScore) {
	headers := []string{"Signal", "Contribution"}
	aligns := []columnAlignment{alignLeft, alignRight}
	rows := [][]string{
		{"title", formatContribution(score.Breakdown.Title)},
		{"format", formatContribution(score.Breakdown.Format)},
		{"progress", formatContribution(score.Breakdown.Progress)},
		{"genre", formatContribution(score.Breakdown.Genre)},
		{"year", formatContribution(score.Breakdown.Year)},
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
	fmt.Fprintf(out, "Confidence: %.1f\n", score.Display())
	if score.MatchedTitle != "" {
		fmt.Fprintf(out, "Matched title: %s\n", score.MatchedTitle)
	}
}

func formatContribution(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
