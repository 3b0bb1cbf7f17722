package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/dinobot/internal/db"
)

// ErrNoSamples is returned when there is nothing to draw.
var ErrNoSamples = errors.New("no samples to plot")

// ratioPoints returns (seconds since first sample, ratio) for every sample
// without an error, and the subset where a jump was sent.
func ratioPoints(samples []db.SampleRow) (all, jumps plotter.XYs) {
	if len(samples) == 0 {
		return nil, nil
	}
	start := samples[0].At
	all = make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if s.Error != "" {
			continue
		}
		pt := plotter.XY{X: s.At.Sub(start).Seconds(), Y: s.Ratio}
		all = append(all, pt)
		if s.Jumped {
			jumps = append(jumps, pt)
		}
	}
	return all, jumps
}

// WritePlot saves a PNG of dark-pixel ratio over time with the obstacle
// threshold and jump markers.
func WritePlot(path string, samples []db.SampleRow, threshold float64) error {
	pts, jumpPts := ratioPoints(samples)
	if len(pts) == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Dark pixel ratio (%d samples)", len(pts))
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Dark ratio"
	p.Y.Min = 0

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("ratio", line)

	th := plotter.NewFunction(func(float64) float64 { return threshold })
	th.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	th.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	th.Width = vg.Points(1)
	p.Add(th)
	p.Legend.Add("threshold", th)

	if len(jumpPts) > 0 {
		sc, err := plotter.NewScatter(jumpPts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.RGBA{R: 44, G: 160, B: 44, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add("jump", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
