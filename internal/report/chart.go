package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/shexpose/shbench/internal/bench"
)

// opColors keeps each operation's color consistent across every chart.
var opColors = map[string]color.NRGBA{
	bench.OpCreate: {R: 31, G: 119, B: 180, A: 255},
	bench.OpRead:   {R: 255, G: 127, B: 14, A: 255},
	bench.OpUpdate: {R: 44, G: 160, B: 44, A: 255},
	bench.OpDelete: {R: 214, G: 39, B: 40, A: 255},
}

// bandAlpha is the opacity of the ± one standard deviation band.
const bandAlpha = 38

// EntityChart renders one entity's average latency against batch size, one
// line per operation, with a ± one standard deviation shaded band.
func EntityChart(rows []bench.Summary, entity, path string) error {
	p := plot.New()
	p.Title.Text = "Avg Latency ± Std Dev"
	p.X.Label.Text = "Batch Size (Requests)"
	p.Y.Label.Text = "Avg Latency (ms)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	sizes := make(map[int]bool)
	for _, op := range bench.Operations {
		var series []bench.Summary
		for _, r := range rows {
			if r.Entity == entity && r.Operation == op {
				series = append(series, r)
			}
		}
		if len(series) == 0 {
			continue
		}

		pts := make(plotter.XYs, len(series))
		band := make(plotter.XYs, 0, 2*len(series))
		for i, r := range series {
			pts[i] = plotter.XY{X: float64(r.BatchSize), Y: float64(r.AvgMS)}
			band = append(band, plotter.XY{X: float64(r.BatchSize), Y: float64(r.AvgMS + r.StdMS)})
			sizes[r.BatchSize] = true
		}
		for i := len(series) - 1; i >= 0; i-- {
			r := series[i]
			band = append(band, plotter.XY{X: float64(r.BatchSize), Y: float64(r.AvgMS - r.StdMS)})
		}

		c := opColors[op]

		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return fmt.Errorf("band for %s: %w", op, err)
		}
		poly.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: bandAlpha}
		poly.LineStyle.Color = color.NRGBA{}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for %s: %w", op, err)
		}
		line.Color = c
		line.Width = vg.Points(2)

		marks, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("markers for %s: %w", op, err)
		}
		marks.GlyphStyle.Color = c
		marks.GlyphStyle.Shape = draw.CircleGlyph{}
		marks.GlyphStyle.Radius = vg.Points(3)

		p.Add(poly, line, marks)
		p.Legend.Add(op, line)
	}

	if len(sizes) > 0 {
		ticks := make([]plot.Tick, 0, len(sizes))
		for n := range sizes {
			ticks = append(ticks, plot.Tick{Value: float64(n), Label: fmt.Sprintf("%d", n)})
		}
		sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}

	return p.Save(7*vg.Inch, 5*vg.Inch, path)
}

// WriteCharts renders one chart per distinct entity, named by pathFor.
func WriteCharts(rows []bench.Summary, pathFor func(entity string) string) error {
	for _, entity := range Entities(rows) {
		if err := EntityChart(rows, entity, pathFor(entity)); err != nil {
			return fmt.Errorf("chart for %s: %w", entity, err)
		}
	}
	return nil
}
