// Package calibration runs the operator dialogue that produces the detection
// region: pick a mode, then either confirm the screen layout or point at the
// two corners of the game.
package calibration

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/banshee-data/dinobot/internal/config"
	"github.com/banshee-data/dinobot/internal/monitoring"
	"github.com/banshee-data/dinobot/internal/region"
)

// PointerSource reports the current mouse pointer position.
type PointerSource interface {
	Position() (image.Point, error)
}

// ScreenSizer reports the size of the primary display.
type ScreenSizer interface {
	ScreenSize() (width, height int, err error)
}

// Calibrator prompts on Out and reads answers from In.
type Calibrator struct {
	in      *bufio.Reader
	out     io.Writer
	pointer PointerSource
	screen  ScreenSizer

	Margin    int
	MinWidth  int
	MinHeight int
}

// New builds a Calibrator using the margin and minimum sizes from cfg.
func New(in io.Reader, out io.Writer, pointer PointerSource, screen ScreenSizer, cfg *config.TuningConfig) *Calibrator {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Calibrator{
		in:        bufio.NewReader(in),
		out:       out,
		pointer:   pointer,
		screen:    screen,
		Margin:    cfg.GetMargin(),
		MinWidth:  cfg.GetMinWidth(),
		MinHeight: cfg.GetMinHeight(),
	}
}

// Run repeats the calibration dialogue until it yields a usable region. A
// region that is too small sends the operator back to the mode menu; closed
// input, a cancelled context or a device error ends calibration with an error.
func (c *Calibrator) Run(ctx context.Context) (region.Calibration, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return region.Calibration{}, err
		}

		cal, err := c.attempt()
		if err == nil {
			return cal, nil
		}
		if !errors.Is(err, region.ErrRegionTooSmall) && !errors.Is(err, region.ErrInvalidRegion) {
			return region.Calibration{}, err
		}

		monitoring.Logf("calibration attempt %d rejected: %v", attempt, err)
		fmt.Fprintf(c.out, "\nCalibration failed. Retrying...\n\n")
	}
}

func (c *Calibrator) attempt() (region.Calibration, error) {
	fmt.Fprintln(c.out, "\nCalibration Options:")
	fmt.Fprintln(c.out, "1. Auto-detect (recommended - works if game is visible)")
	fmt.Fprintln(c.out, "2. Manual calibration")
	fmt.Fprint(c.out, "\nEnter choice (1 or 2): ")

	choice, err := c.readLine()
	if err != nil {
		return region.Calibration{}, err
	}

	if strings.TrimSpace(choice) == "1" {
		return c.heuristic()
	}
	return c.manual()
}

func (c *Calibrator) heuristic() (region.Calibration, error) {
	fmt.Fprintln(c.out, "\n=== AUTO CALIBRATION ===")
	fmt.Fprintln(c.out, "1. Open Chrome Dino game (chrome://dino)")
	fmt.Fprintln(c.out, "2. Press F11 to go fullscreen OR maximize the window")
	fmt.Fprintln(c.out, "3. Make sure the game is visible and centered")
	fmt.Fprintln(c.out, "\nPress Enter when ready...")
	if _, err := c.readLine(); err != nil {
		return region.Calibration{}, err
	}

	w, h, err := c.screen.ScreenSize()
	if err != nil {
		return region.Calibration{}, fmt.Errorf("read screen size: %w", err)
	}

	cal, err := region.Heuristic(w, h, c.Margin)
	if err != nil {
		fmt.Fprintf(c.out, "\nScreen %dx%d is too small for a %dpx margin\n", w, h, c.Margin)
		return region.Calibration{}, err
	}

	fmt.Fprintf(c.out, "\nScreen size: %dx%d\n", w, h)
	fmt.Fprintf(c.out, "Detection region: %s\n", cal.Detection)
	return cal, nil
}

func (c *Calibrator) manual() (region.Calibration, error) {
	fmt.Fprintln(c.out, "\n=== MANUAL CALIBRATION ===")
	fmt.Fprintln(c.out, "You will point at two corners of the game area")

	tl, err := c.corner("TOP-LEFT", "Top-left")
	if err != nil {
		return region.Calibration{}, err
	}
	br, err := c.corner("BOTTOM-RIGHT", "Bottom-right")
	if err != nil {
		return region.Calibration{}, err
	}

	cal, err := region.FromCorners(tl, br, c.MinWidth, c.MinHeight)
	if err != nil {
		var small *region.TooSmallError
		if errors.As(err, &small) {
			fmt.Fprintf(c.out, "\nRegion too small: %dx%d\n", small.Width, small.Height)
			fmt.Fprintln(c.out, "Please select a larger area!")
		}
		return region.Calibration{}, err
	}

	fmt.Fprintf(c.out, "\nCalibrated: %dx%d\n", cal.PlayArea.Width(), cal.PlayArea.Height())
	fmt.Fprintf(c.out, "Detection region: %s\n", cal.Detection)
	return cal, nil
}

func (c *Calibrator) corner(prompt, label string) (image.Point, error) {
	fmt.Fprintf(c.out, "\nMove mouse to %s corner of game and press Enter...\n", prompt)
	if _, err := c.readLine(); err != nil {
		return image.Point{}, err
	}
	p, err := c.pointer.Position()
	if err != nil {
		return image.Point{}, fmt.Errorf("read pointer: %w", err)
	}
	fmt.Fprintf(c.out, "%s: (%d, %d)\n", label, p.X, p.Y)
	return p, nil
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as-is; only an empty read at EOF is an error.
func (c *Calibrator) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("calibration input closed: %w", err)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
