package bench

import (
	"math"
	"sort"
)

// Operation kinds, in the order phases run.
const (
	OpCreate = "CREATE"
	OpRead   = "READ"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Operations lists the benchmark phases in run order.
var Operations = []string{OpCreate, OpRead, OpUpdate, OpDelete}

// Summary aggregates one batch's outcomes for one (operation, batch size)
// pair. Durations are whole milliseconds, rounded.
type Summary struct {
	Entity    string
	Operation string
	BatchSize int
	Total     int
	Succeeded int
	Failed    int
	MinMS     int64
	MaxMS     int64
	AvgMS     int64
	StdMS     int64
	TotalMS   int64
}

// Summarize reduces a batch's raw outcomes into summary statistics. An empty
// batch yields a zero-valued summary, never a division error. The standard
// deviation is the population form.
func Summarize(operation string, batchSize int, outcomes []Outcome) Summary {
	s := Summary{Operation: operation, BatchSize: batchSize, Total: len(outcomes)}
	if len(outcomes) == 0 {
		return s
	}

	durations := make([]int64, len(outcomes))
	for i, o := range outcomes {
		durations[i] = o.DurationMS
		if o.OK {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum int64
	for _, d := range durations {
		sum += d
	}
	n := float64(len(durations))
	avg := float64(sum) / n

	var sq float64
	for _, d := range durations {
		diff := float64(d) - avg
		sq += diff * diff
	}

	s.MinMS = durations[0]
	s.MaxMS = durations[len(durations)-1]
	s.AvgMS = int64(math.Round(avg))
	s.StdMS = int64(math.Round(math.Sqrt(sq / n)))
	s.TotalMS = sum
	return s
}
