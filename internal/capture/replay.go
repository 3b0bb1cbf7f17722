package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/banshee-data/dinobot/internal/region"
	"github.com/banshee-data/dinobot/internal/timeutil"
)

// ErrNoFrames is returned when a replay directory holds no PNG frames.
var ErrNoFrames = errors.New("no frames to replay")

// subImager is implemented by every concrete image type in the image package.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// ReplayCapturer serves previously captured PNG frames in file-name order,
// looping back to the first frame after the last. Frames are treated as full
// screenshots: a frame that contains the region is cropped to it. A smaller
// frame is assumed to be a pre-cropped sample and is cut to the region size
// from its top-left corner.
type ReplayCapturer struct {
	mu     sync.Mutex
	frames []image.Image
	names  []string
	next   int
	clock  timeutil.Clock
}

// NewReplayCapturer loads every *.png file in dir.
func NewReplayCapturer(dir string, clock timeutil.Clock) (*ReplayCapturer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read replay dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	sort.Strings(names)

	frames := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := loadPNG(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}

	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ReplayCapturer{frames: frames, names: names, clock: clock}, nil
}

// NewReplayCapturerFromImages serves the given frames; used by tests and the
// dry-run tooling.
func NewReplayCapturerFromImages(frames []image.Image, clock timeutil.Clock) (*ReplayCapturer, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	names := make([]string, len(frames))
	for i := range frames {
		names[i] = fmt.Sprintf("frame-%04d", i)
	}
	return &ReplayCapturer{frames: frames, names: names, clock: clock}, nil
}

// Len returns the number of loaded frames.
func (rc *ReplayCapturer) Len() int { return len(rc.frames) }

// Capture returns the next frame.
func (rc *ReplayCapturer) Capture(r region.Region) (Sample, error) {
	rc.mu.Lock()
	img := rc.frames[rc.next]
	rc.next = (rc.next + 1) % len(rc.frames)
	rc.mu.Unlock()

	return Sample{Image: crop(img, r), CapturedAt: rc.clock.Now()}, nil
}

// ScreenSize reports the size of the first frame, so heuristic calibration
// can run against a replay without a display.
func (rc *ReplayCapturer) ScreenSize() (int, int, error) {
	b := rc.frames[0].Bounds()
	return b.Dx(), b.Dy(), nil
}

func crop(img image.Image, r region.Region) image.Image {
	b := img.Bounds()
	if !r.Valid() || (b.Dx() <= r.Width() && b.Dy() <= r.Height()) {
		return img
	}
	si, ok := img.(subImager)
	if !ok {
		return img
	}
	if want := r.Rect(); want.In(b) {
		return si.SubImage(want)
	}
	want := image.Rect(b.Min.X, b.Min.Y, b.Min.X+r.Width(), b.Min.Y+r.Height())
	return si.SubImage(want.Intersect(b))
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
