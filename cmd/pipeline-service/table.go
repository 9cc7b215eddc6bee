package main

import (
	"fmt"
	"strings"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

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
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderSignals(signals []dto.SignalResponse) string {
	rows := make([][]string, 0, len(signals))
	for _, s := range signals {
		rows = append(rows, []string{
			s.PublishedAt.Format("2006-01-02 15:04"),
			s.Sector,
			s.Label,
			fmt.Sprintf("%d", s.Impact),
			fmt.Sprintf("%d", s.Confidence),
			sentimentMark(s.Sentiment),
			strings.Join(s.Tickers, ","),
			utils.Truncate(s.Title, 60),
		})
	}
	return renderTable(
		[]string{"Published (UTC)", "Sector", "Label", "Impact", "Conf", "Sent", "Tickers", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderRunResult(r *dto.RunResult) string {
	return renderTable(
		[]string{"Run", "Collected", "Orphans", "Candidates", "New signals", "Failed"},
		[][]string{{
			r.RunID,
			fmt.Sprintf("%d", r.Collected),
			fmt.Sprintf("%d", r.Orphans),
			fmt.Sprintf("%d", r.Candidates),
			fmt.Sprintf("%d", r.Persisted),
			fmt.Sprintf("%d", r.Failed),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}

func sentimentMark(s int) string {
	switch {
	case s > 0:
		return "+"
	case s < 0:
		return "-"
	}
	return "0"
}
