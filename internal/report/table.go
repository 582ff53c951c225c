package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shexpose/shbench/internal/bench"
)

var tableHeader = []string{
	"Operation", "N", "OK", "Fail",
	"Min(ms)", "Avg(ms)", "Std(ms)", "Max(ms)", "Total(ms)",
}

// PrintTable writes an aligned summary table for one phase.
func PrintTable(w io.Writer, rows []bench.Summary) {
	if len(rows) == 0 {
		return
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.Operation,
			strconv.Itoa(r.BatchSize),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.FormatInt(r.MinMS, 10),
			strconv.FormatInt(r.AvgMS, 10),
			strconv.FormatInt(r.StdMS, 10),
			strconv.FormatInt(r.MaxMS, 10),
			strconv.FormatInt(r.TotalMS, 10),
		}
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	writeRow := func(row []string) {
		parts := make([]string, len(row))
		for i, c := range row {
			parts[i] = fmt.Sprintf(" %-*s ", widths[i], c)
		}
		fmt.Fprintln(w, strings.Join(parts, "|"))
	}

	writeRow(tableHeader)
	seps := make([]string, len(widths))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width+2)
	}
	fmt.Fprintln(w, strings.Join(seps, "+"))
	for _, row := range cells {
		writeRow(row)
	}
}
