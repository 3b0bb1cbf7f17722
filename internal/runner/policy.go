package runner

import (
	"github.com/banshee-data/dinobot/internal/detect"
	"github.com/banshee-data/dinobot/internal/monitoring"
)

// SamplePolicy decides what a failed sample counts as. It must not panic and
// its result replaces the missing classification for that iteration.
type SamplePolicy func(err error) detect.Result

// TreatAsClear logs the failure and reports no obstacle.
func TreatAsClear(err error) detect.Result {
	monitoring.Logf("Detection error: %v", err)
	return detect.Result{}
}
