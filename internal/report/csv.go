// Package report persists benchmark results as CSV and renders per-entity
// latency charts.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shexpose/shbench/internal/bench"
)

// Columns is the fixed CSV column order.
var Columns = []string{
	"entity", "operation", "batch_size", "total", "succeeded", "failed",
	"min_ms", "avg_ms", "std_ms", "max_ms", "total_ms",
}

// WriteCSV serializes the run's summaries in order.
func WriteCSV(path string, rows []bench.Summary) error {
	f, err := os.Create(path) // #nosec G304 - path comes from run config
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Entity,
			row.Operation,
			strconv.Itoa(row.BatchSize),
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Succeeded),
			strconv.Itoa(row.Failed),
			strconv.FormatInt(row.MinMS, 10),
			strconv.FormatInt(row.AvgMS, 10),
			strconv.FormatInt(row.StdMS, 10),
			strconv.FormatInt(row.MaxMS, 10),
			strconv.FormatInt(row.TotalMS, 10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush results: %w", err)
	}
	return f.Close()
}

// ReadCSV loads a results file written by WriteCSV, for chart redraws.
func ReadCSV(path string) ([]bench.Summary, error) {
	f, err := os.Open(path) // #nosec G304 - user-supplied results path
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(Columns) {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header column %q, want %q", header[i], col)
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	rows := make([]bench.Summary, 0, len(records))
	for i, rec := range records {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (bench.Summary, error) {
	var row bench.Summary
	if len(rec) != len(Columns) {
		return row, fmt.Errorf("expected %d fields, got %d", len(Columns), len(rec))
	}
	row.Entity = rec[0]
	row.Operation = rec[1]

	ints := make([]int64, 0, 9)
	for _, field := range rec[2:] {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return row, fmt.Errorf("parse %q: %w", field, err)
		}
		ints = append(ints, n)
	}
	row.BatchSize = int(ints[0])
	row.Total = int(ints[1])
	row.Succeeded = int(ints[2])
	row.Failed = int(ints[3])
	row.MinMS = ints[4]
	row.AvgMS = ints[5]
	row.StdMS = ints[6]
	row.MaxMS = ints[7]
	row.TotalMS = ints[8]
	return row, nil
}

// Entities returns the distinct entity names in first-appearance order.
func Entities(rows []bench.Summary) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		if !seen[row.Entity] {
			seen[row.Entity] = true
			names = append(names, row.Entity)
		}
	}
	return names
}
