// Package region defines the screen rectangle the loop samples and the two
// ways of deriving it: heuristic placement relative to the screen, or two
// operator-supplied corners.
package region

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrRegionTooSmall is returned when manual corners enclose an area below
	// the minimum width or height. Callers retry calibration.
	ErrRegionTooSmall = errors.New("region too small")

	// ErrInvalidRegion is returned when a derived region would be empty.
	ErrInvalidRegion = errors.New("invalid region")
)

// Mode identifies how a Calibration was produced.
type Mode string

const (
	ModeHeuristic Mode = "heuristic"
	ModeManual    Mode = "manual"
)

// Region is a rectangle in screen pixel coordinates. Right and Bottom are
// exclusive, matching image.Rectangle.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

func (r Region) Width() int  { return r.Right - r.Left }
func (r Region) Height() int { return r.Bottom - r.Top }

// Valid reports whether the region has positive width and height.
func (r Region) Valid() bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Region) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Calibration is the result of calibrating: the overall play area and the
// centred sub-region that is actually scanned.
type Calibration struct {
	Mode      Mode   `json:"mode"`
	PlayArea  Region `json:"play_area"`
	Detection Region `json:"detection"`
}

// Subdivide returns the centre cell of a 3x3 split of play, i.e.
// (L + w/3, T + h/3, L + 2w/3, T + 2h/3) with integer division.
func Subdivide(play Region) Region {
	w, h := play.Width(), play.Height()
	return Region{
		Left:   play.Left + w/3,
		Top:    play.Top + h/3,
		Right:  play.Left + 2*w/3,
		Bottom: play.Top + 2*h/3,
	}
}

// Heuristic places the play area margin pixels inside a screen of the given
// size and scans its centre third.
func Heuristic(screenW, screenH, margin int) (Calibration, error) {
	play := Region{
		Left:   margin,
		Top:    margin,
		Right:  screenW - margin,
		Bottom: screenH - margin,
	}
	if !play.Valid() {
		return Calibration{}, fmt.Errorf("%w: screen %dx%d with margin %d", ErrInvalidRegion, screenW, screenH, margin)
	}
	det := Subdivide(play)
	if !det.Valid() {
		return Calibration{}, fmt.Errorf("%w: detection area %s is empty", ErrInvalidRegion, det)
	}
	return Calibration{Mode: ModeHeuristic, PlayArea: play, Detection: det}, nil
}

// FromCorners builds a calibration from the top-left and bottom-right corners
// of the play area. Areas narrower than minW or shorter than minH are rejected
// with ErrRegionTooSmall; this includes corners given in the wrong order.
func FromCorners(topLeft, bottomRight image.Point, minW, minH int) (Calibration, error) {
	play := Region{
		Left:   topLeft.X,
		Top:    topLeft.Y,
		Right:  bottomRight.X,
		Bottom: bottomRight.Y,
	}
	if play.Width() < minW || play.Height() < minH || !play.Valid() {
		return Calibration{}, &TooSmallError{Width: play.Width(), Height: play.Height()}
	}
	return Calibration{Mode: ModeManual, PlayArea: play, Detection: Subdivide(play)}, nil
}

// TooSmallError carries the measured size of a rejected manual region.
type TooSmallError struct {
	Width, Height int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf("%v: %dx%d", ErrRegionTooSmall, e.Width, e.Height)
}

func (e *TooSmallError) Unwrap() error { return ErrRegionTooSmall }
