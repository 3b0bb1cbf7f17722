// Package detect classifies a captured sample as "obstacle" or "clear" from
// the fraction of dark pixels it contains.
package detect

import (
	"errors"
	"fmt"
	"image"

	"github.com/banshee-data/dinobot/internal/config"
)

// ErrEmptySample is returned for samples with no pixels.
var ErrEmptySample = errors.New("empty sample")

// Result is the classification of one sample.
type Result struct {
	DarkPixels  int
	TotalPixels int
	Ratio       float64
	Obstacle    bool
}

func (r Result) String() string {
	return fmt.Sprintf("dark=%d/%d ratio=%.4f obstacle=%v", r.DarkPixels, r.TotalPixels, r.Ratio, r.Obstacle)
}

// Detector counts pixels whose luminance is strictly below DarkThreshold and
// reports an obstacle when their fraction is strictly above ObstacleRatio.
type Detector struct {
	DarkThreshold uint8
	ObstacleRatio float64
}

// NewDetector returns a Detector using the thresholds from cfg.
func NewDetector(cfg *config.TuningConfig) Detector {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return Detector{
		DarkThreshold: cfg.GetDarkThreshold(),
		ObstacleRatio: cfg.GetObstacleRatio(),
	}
}

// Classify computes the dark-pixel ratio of img.
func (d Detector) Classify(img image.Image) (Result, error) {
	if img == nil {
		return Result{}, ErrEmptySample
	}
	total := img.Bounds().Dx() * img.Bounds().Dy()
	if total <= 0 {
		return Result{}, ErrEmptySample
	}

	dark := CountDark(img, d.DarkThreshold)
	ratio := float64(dark) / float64(total)
	return Result{
		DarkPixels:  dark,
		TotalPixels: total,
		Ratio:       ratio,
		Obstacle:    ratio > d.ObstacleRatio,
	}, nil
}
