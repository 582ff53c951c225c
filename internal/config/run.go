package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Run identifies one benchmark invocation and the artifact paths it owns.
// Passed explicitly instead of living in package-level state so redraws and
// tests can carry their own timestamps.
type Run struct {
	ID        string
	StartedAt time.Time
	Timestamp string
	OutputDir string
}

// NewRun stamps a fresh run writing artifacts under outputDir.
func NewRun(outputDir string) Run {
	now := time.Now()
	return Run{
		ID:        uuid.NewString(),
		StartedAt: now,
		Timestamp: now.Format("20060102_150405"),
		OutputDir: outputDir,
	}
}

// CSVPath is the results file for this run.
func (r Run) CSVPath() string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("benchmark_results_%s.csv", r.Timestamp))
}

// ChartPath is the chart image for one entity in this run.
func (r Run) ChartPath(entity string) string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("benchmark_chart_%s_%s.png", entity, r.Timestamp))
}
