package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shexpose/shbench/internal/config"
	"github.com/shexpose/shbench/internal/report"
)

// runRedraw regenerates all per-entity charts from a previously saved results
// file. No network activity.
func runRedraw(_ *cobra.Command, args []string) error {
	csvPath := args[0]

	rows, err := report.ReadCSV(csvPath)
	if err != nil {
		return err
	}
	entities := report.Entities(rows)
	if len(entities) == 0 {
		return fmt.Errorf("no result rows in %s", csvPath)
	}

	// Charts land next to the CSV, stamped with a fresh timestamp.
	run := config.NewRun(filepath.Dir(csvPath))

	fmt.Printf("Redrawing charts for: %s\n", strings.Join(entities, ", "))
	if err := report.WriteCharts(rows, run.ChartPath); err != nil {
		return err
	}
	for _, entity := range entities {
		fmt.Printf("Chart saved to %s\n", run.ChartPath(entity))
	}
	return nil
}
