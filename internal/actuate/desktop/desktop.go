// Package desktop drives the local keyboard and reads the mouse pointer.
// It is kept apart from package actuate because robotgo needs cgo and a
// display at build time.
package desktop

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// Keyboard taps a key on the focused window for every jump.
type Keyboard struct {
	Key string
}

// NewKeyboard returns a Keyboard that taps key ("space" by default).
func NewKeyboard(key string) *Keyboard {
	if key == "" {
		key = "space"
	}
	return &Keyboard{Key: key}
}

func (k *Keyboard) Jump() error {
	if err := robotgo.KeyTap(k.Key); err != nil {
		return fmt.Errorf("key tap %q: %w", k.Key, err)
	}
	return nil
}

func (k *Keyboard) Close() error { return nil }

// Pointer reads the current mouse position.
type Pointer struct{}

func (Pointer) Position() (image.Point, error) {
	x, y := robotgo.Location()
	return image.Pt(x, y), nil
}
