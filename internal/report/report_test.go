package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shexpose/shbench/internal/bench"
)

func sampleRows() []bench.Summary {
	return []bench.Summary{
		{Entity: "person", Operation: bench.OpCreate, BatchSize: 5, Total: 5, Succeeded: 5, Failed: 0, MinMS: 12, AvgMS: 20, StdMS: 4, MaxMS: 28, TotalMS: 100},
		{Entity: "person", Operation: bench.OpCreate, BatchSize: 10, Total: 10, Succeeded: 9, Failed: 1, MinMS: 15, AvgMS: 31, StdMS: 9, MaxMS: 60, TotalMS: 310},
		{Entity: "person", Operation: bench.OpRead, BatchSize: 5, Total: 5, Succeeded: 5, Failed: 0, MinMS: 3, AvgMS: 5, StdMS: 1, MaxMS: 7, TotalMS: 25},
		{Entity: "event", Operation: bench.OpDelete, BatchSize: 10, Total: 8, Succeeded: 8, Failed: 0, MinMS: 9, AvgMS: 14, StdMS: 3, MaxMS: 21, TotalMS: 112},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	rows := sampleRows()

	require.NoError(t, WriteCSV(path, rows))

	loaded, err := ReadCSV(path)
	require.NoError(t, err)
	// The redraw path must see exactly the series the run produced.
	assert.Equal(t, rows, loaded)
}

func TestWriteCSV_ColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, WriteCSV(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "entity,operation,batch_size,total,succeeded,failed,min_ms,avg_ms,std_ms,max_ms,total_ms", lines[0])
	assert.Len(t, lines, 1+len(sampleRows()))
	assert.Equal(t, "person,CREATE,5,5,5,0,12,20,4,28,100", lines[1])
}

func TestReadCSV_RejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o600))

	_, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestReadCSV_RejectsBadNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := strings.Join(Columns, ",") + "\nperson,CREATE,x,5,5,0,1,2,3,4,10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestEntities(t *testing.T) {
	names := Entities(sampleRows())
	assert.Equal(t, []string{"person", "event"}, names)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleRows()[:2])

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, separator, two rows

	assert.Contains(t, lines[0], "Operation")
	assert.Contains(t, lines[0], "Total(ms)")
	assert.Contains(t, lines[1], "+")
	assert.Contains(t, lines[2], "CREATE")
	assert.Contains(t, lines[3], "10")

	// All rows align to the same width.
	assert.Equal(t, len(lines[0]), len(lines[1]))
	assert.Equal(t, len(lines[0]), len(lines[2]))
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil)
	assert.Zero(t, buf.Len())
}

func TestEntityChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "person.png")
	require.NoError(t, EntityChart(sampleRows(), "person", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteCharts_OnePerEntity(t *testing.T) {
	dir := t.TempDir()
	pathFor := func(entity string) string {
		return filepath.Join(dir, "chart_"+entity+".png")
	}

	require.NoError(t, WriteCharts(sampleRows(), pathFor))

	for _, entity := range []string{"person", "event"} {
		_, err := os.Stat(pathFor(entity))
		assert.NoError(t, err, "missing chart for %s", entity)
	}
}
