// Package report summarises a recorded session as text, a PNG plot and an
// HTML chart.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/dinobot/internal/db"
)

// Stats describes the samples of one session.
type Stats struct {
	Samples   int
	Obstacles int
	Jumps     int
	Errors    int

	MeanRatio   float64
	StdDevRatio float64
	P50Ratio    float64
	P95Ratio    float64
	MaxRatio    float64

	// Zero when fewer than two jumps were recorded.
	MeanJumpInterval time.Duration
	Span             time.Duration
}

// Summarize computes Stats over samples. Errored samples are counted but
// excluded from the ratio statistics.
func Summarize(samples []db.SampleRow) Stats {
	var st Stats
	st.Samples = len(samples)
	if len(samples) == 0 {
		return st
	}

	ratios := make([]float64, 0, len(samples))
	var jumps []time.Time
	for _, s := range samples {
		if s.Error != "" {
			st.Errors++
			continue
		}
		ratios = append(ratios, s.Ratio)
		if s.Obstacle {
			st.Obstacles++
		}
		if s.Jumped {
			jumps = append(jumps, s.At)
		}
	}
	st.Jumps = len(jumps)
	st.Span = samples[len(samples)-1].At.Sub(samples[0].At)

	if len(ratios) > 0 {
		st.MeanRatio, st.StdDevRatio = stat.MeanStdDev(ratios, nil)
		if len(ratios) == 1 {
			st.StdDevRatio = 0
		}
		sort.Float64s(ratios)
		st.P50Ratio = stat.Quantile(0.5, stat.Empirical, ratios, nil)
		st.P95Ratio = stat.Quantile(0.95, stat.Empirical, ratios, nil)
		st.MaxRatio = floats.Max(ratios)
	}

	if len(jumps) > 1 {
		st.MeanJumpInterval = jumps[len(jumps)-1].Sub(jumps[0]) / time.Duration(len(jumps)-1)
	}
	return st
}

// Print writes a plain-text report for s.
func Print(w io.Writer, s *db.Session, st Stats) {
	fmt.Fprintf(w, "Session %s\n", s.SessionID)
	fmt.Fprintf(w, "  started:    %s\n", s.StartedAt.Format(time.RFC3339))
	if !s.EndedAt.IsZero() {
		fmt.Fprintf(w, "  ended:      %s (%s)\n", s.EndedAt.Format(time.RFC3339), s.EndedAt.Sub(s.StartedAt).Round(time.Millisecond))
	} else {
		fmt.Fprintln(w, "  ended:      (unfinished)")
	}
	fmt.Fprintf(w, "  mode:       %s\n", s.Mode)
	fmt.Fprintf(w, "  detection:  (%d, %d, %d, %d)\n", s.Detection.Left, s.Detection.Top, s.Detection.Right, s.Detection.Bottom)
	fmt.Fprintf(w, "  thresholds: dark<%d ratio>%.4f cooldown=%s\n", s.DarkThreshold, s.ObstacleRatio, s.Cooldown)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  samples:    %d (%d errors)\n", st.Samples, st.Errors)
	fmt.Fprintf(w, "  obstacles:  %d\n", st.Obstacles)
	fmt.Fprintf(w, "  jumps:      %d\n", st.Jumps)
	fmt.Fprintf(w, "  ratio:      mean=%.4f sd=%.4f p50=%.4f p95=%.4f max=%.4f\n",
		st.MeanRatio, st.StdDevRatio, st.P50Ratio, st.P95Ratio, st.MaxRatio)
	if st.MeanJumpInterval > 0 {
		fmt.Fprintf(w, "  jump every: %s\n", st.MeanJumpInterval.Round(time.Millisecond))
	}
}
