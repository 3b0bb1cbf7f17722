package runner

import (
	"fmt"
	"time"

	"github.com/banshee-data/dinobot/internal/detect"
)

// State is the loop's mutable bookkeeping. Only the Runner that owns it
// writes to it, and only from Step.
type State struct {
	StartedAt time.Time
	LastJump  time.Time

	Frames         int
	Obstacles      int
	Jumps          int
	Suppressed     int
	Errors         int
	ActuatorErrors int
}

// Summary is reported when the loop stops.
type Summary struct {
	State
	Duration time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("jumps=%d frames=%d obstacles=%d suppressed=%d errors=%d actuator_errors=%d duration=%s",
		s.Jumps, s.Frames, s.Obstacles, s.Suppressed, s.Errors, s.ActuatorErrors, s.Duration.Round(time.Millisecond))
}

// SampleRecord describes one loop iteration for a Recorder.
type SampleRecord struct {
	At     time.Time
	Result detect.Result
	Jumped bool
	Err    error
}

// Recorder receives one record per iteration. Errors are logged by the
// loop and otherwise ignored.
type Recorder interface {
	Record(rec SampleRecord) error
}
