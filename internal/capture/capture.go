// Package capture grabs samples of a screen region, either from the live
// display or from a directory of recorded frames.
package capture

import (
	"image"
	"time"

	"github.com/banshee-data/dinobot/internal/region"
)

// Sample is one grab of the detection region.
type Sample struct {
	Image      image.Image
	CapturedAt time.Time
}

// Capturer grabs the pixels inside a region.
type Capturer interface {
	Capture(r region.Region) (Sample, error)
}

// ScreenSizer reports the size of the primary display.
type ScreenSizer interface {
	ScreenSize() (width, height int, err error)
}

// CapturerFunc adapts a function to the Capturer interface.
type CapturerFunc func(r region.Region) (Sample, error)

func (f CapturerFunc) Capture(r region.Region) (Sample, error) { return f(r) }
