// Package actuate turns a jump decision into an input event and rate-limits
// those events with a cooldown.
package actuate

import (
	"sync/atomic"

	"github.com/banshee-data/dinobot/internal/monitoring"
)

// Actuator emits a single fire-and-forget jump.
type Actuator interface {
	Jump() error
	Close() error
}

// DryRun logs jumps instead of sending them. It is used with -dry-run and in tests.
type DryRun struct {
	jumps atomic.Int64
	Quiet bool
}

func (d *DryRun) Jump() error {
	n := d.jumps.Add(1)
	if !d.Quiet {
		monitoring.Logf("dry-run: jump %d", n)
	}
	return nil
}

// Jumps returns how many jumps have been requested.
func (d *DryRun) Jumps() int64 { return d.jumps.Load() }

func (d *DryRun) Close() error { return nil }
