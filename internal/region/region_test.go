package region

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristic_1080p(t *testing.T) {
	cal, err := Heuristic(1920, 1080, 100)
	require.NoError(t, err)

	want := Calibration{
		Mode:      ModeHeuristic,
		PlayArea:  Region{Left: 100, Top: 100, Right: 1820, Bottom: 980},
		Detection: Region{Left: 673, Top: 393, Right: 1246, Bottom: 686},
	}
	if diff := cmp.Diff(want, cal); diff != "" {
		t.Errorf("Heuristic mismatch (-want +got):\n%s", diff)
	}
}

func TestHeuristic_ScreenSmallerThanMargins(t *testing.T) {
	_, err := Heuristic(150, 150, 100)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestSubdivide(t *testing.T) {
	tests := []struct {
		name string
		play Region
		want Region
	}{
		{
			name: "origin square",
			play: Region{0, 0, 300, 300},
			want: Region{100, 100, 200, 200},
		},
		{
			name: "offset with remainders",
			play: Region{10, 20, 311, 122},
			want: Region{110, 54, 210, 88},
		},
		{
			name: "manual calibration example",
			play: Region{500, 500, 800, 700},
			want: Region{600, 566, 700, 633},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subdivide(tt.play)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Subdivide(%s) mismatch (-want +got):\n%s", tt.play, diff)
			}

			w, h := tt.play.Width(), tt.play.Height()
			assert.Equal(t, tt.play.Left+w/3, got.Left)
			assert.Equal(t, tt.play.Top+h/3, got.Top)
			assert.Equal(t, tt.play.Left+2*w/3, got.Right)
			assert.Equal(t, tt.play.Top+2*h/3, got.Bottom)
		})
	}
}

func TestFromCorners_RejectsSmallRegions(t *testing.T) {
	tests := []struct {
		name          string
		tl, br        image.Point
		width, height int
	}{
		{"narrow", image.Pt(500, 500), image.Pt(650, 550), 150, 50},
		{"just under width", image.Pt(0, 0), image.Pt(199, 400), 199, 400},
		{"just under height", image.Pt(0, 0), image.Pt(400, 99), 400, 99},
		{"swapped corners", image.Pt(800, 700), image.Pt(100, 100), -700, -600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCorners(tt.tl, tt.br, 200, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRegionTooSmall))

			var tooSmall *TooSmallError
			require.ErrorAs(t, err, &tooSmall)
			assert.Equal(t, tt.width, tooSmall.Width)
			assert.Equal(t, tt.height, tooSmall.Height)
		})
	}
}

func TestFromCorners_AcceptsMinimum(t *testing.T) {
	cal, err := FromCorners(image.Pt(10, 10), image.Pt(210, 110), 200, 100)
	require.NoError(t, err)

	assert.Equal(t, ModeManual, cal.Mode)
	assert.Equal(t, Region{10, 10, 210, 110}, cal.PlayArea)
	assert.Equal(t, Subdivide(cal.PlayArea), cal.Detection)
	assert.True(t, cal.Detection.Valid())
}

func TestRegionHelpers(t *testing.T) {
	r := Region{Left: 673, Top: 393, Right: 1246, Bottom: 686}

	assert.Equal(t, 573, r.Width())
	assert.Equal(t, 293, r.Height())
	assert.True(t, r.Valid())
	assert.Equal(t, image.Rect(673, 393, 1246, 686), r.Rect())
	assert.Equal(t, "(673, 393, 1246, 686)", r.String())
	assert.False(t, Region{5, 5, 5, 10}.Valid())
}

func TestTooSmallError_Message(t *testing.T) {
	err := &TooSmallError{Width: 150, Height: 50}
	assert.Equal(t, "region too small: 150x50", err.Error())
}
