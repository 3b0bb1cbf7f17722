package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/banshee-data/dinobot/internal/region"
)

// ErrNoDisplay is returned when no active display is available.
var ErrNoDisplay = errors.New("no active display")

// ScreenCapturer captures from the live desktop.
type ScreenCapturer struct {
	// Display selects the display used for ScreenSize. Captures use absolute
	// desktop coordinates and may span displays.
	Display int
}

// NewScreenCapturer returns a capturer bound to the primary display.
func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{}
}

// Capture grabs the region from the desktop.
func (s *ScreenCapturer) Capture(r region.Region) (Sample, error) {
	if !r.Valid() {
		return Sample{}, fmt.Errorf("capture %s: %w", r, region.ErrInvalidRegion)
	}
	img, err := screenshot.CaptureRect(r.Rect())
	if err != nil {
		return Sample{}, fmt.Errorf("capture %s: %w", r, err)
	}
	return Sample{Image: img, CapturedAt: time.Now()}, nil
}

// ScreenSize returns the size of the configured display.
func (s *ScreenCapturer) ScreenSize() (int, int, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return 0, 0, ErrNoDisplay
	}
	if s.Display < 0 || s.Display >= n {
		return 0, 0, fmt.Errorf("display %d out of range (have %d)", s.Display, n)
	}
	b := screenshot.GetDisplayBounds(s.Display)
	return b.Dx(), b.Dy(), nil
}
