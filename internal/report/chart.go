package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/dinobot/internal/db"
)

// WriteChart renders an interactive HTML line chart of dark-pixel ratio
// over time, with the obstacle threshold as a second series.
func WriteChart(w io.Writer, s *db.Session, samples []db.SampleRow, threshold float64) error {
	pts, _ := ratioPoints(samples)
	if len(pts) == 0 {
		return ErrNoSamples
	}

	x := make([]string, 0, len(pts))
	ratio := make([]opts.LineData, 0, len(pts))
	limit := make([]opts.LineData, 0, len(pts))
	for _, pt := range pts {
		x = append(x, fmt.Sprintf("%.3f", pt.X))
		ratio = append(ratio, opts.LineData{Value: pt.Y})
		limit = append(limit, opts.LineData{Value: threshold})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Dino session", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dark pixel ratio", Subtitle: fmt.Sprintf("session=%s samples=%d", s.SessionID, len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Ratio", Min: 0}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(x).
		AddSeries("ratio", ratio, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("threshold", limit, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
