// Package runner implements the sense-decide-act loop: capture the detection
// region, classify it, and jump when an obstacle is seen outside the cooldown.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/dinobot/internal/actuate"
	"github.com/banshee-data/dinobot/internal/capture"
	"github.com/banshee-data/dinobot/internal/config"
	"github.com/banshee-data/dinobot/internal/detect"
	"github.com/banshee-data/dinobot/internal/monitoring"
	"github.com/banshee-data/dinobot/internal/region"
	"github.com/banshee-data/dinobot/internal/timeutil"
)

// Config wires a Runner. Region, Capturer and Actuator are required.
type Config struct {
	Region   region.Region
	Capturer capture.Capturer
	Actuator actuate.Actuator
	Tuning   *config.TuningConfig

	// Optional
	Clock    timeutil.Clock
	Out      io.Writer
	Recorder Recorder
	Policy   SamplePolicy
}

// Runner owns the loop state for one run.
type Runner struct {
	region   region.Region
	capturer capture.Capturer
	detector detect.Detector
	actuator actuate.Actuator
	cooldown *actuate.Cooldown
	clock    timeutil.Clock
	out      io.Writer
	recorder Recorder
	policy   SamplePolicy

	interval    time.Duration
	startDelay  time.Duration
	startSettle time.Duration

	state State
}

// New validates cfg and returns a Runner ready for Run or Step.
func New(cfg Config) (*Runner, error) {
	if !cfg.Region.Valid() {
		return nil, fmt.Errorf("runner: %w: %s", region.ErrInvalidRegion, cfg.Region)
	}
	if cfg.Capturer == nil {
		return nil, errors.New("runner: capturer is required")
	}
	if cfg.Actuator == nil {
		return nil, errors.New("runner: actuator is required")
	}
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Policy == nil {
		cfg.Policy = TreatAsClear
	}

	return &Runner{
		region:      cfg.Region,
		capturer:    cfg.Capturer,
		detector:    detect.NewDetector(tuning),
		actuator:    cfg.Actuator,
		cooldown:    actuate.NewCooldown(tuning.GetCooldown()),
		clock:       cfg.Clock,
		out:         cfg.Out,
		recorder:    cfg.Recorder,
		policy:      cfg.Policy,
		interval:    tuning.GetInterval(),
		startDelay:  tuning.GetStartDelay(),
		startSettle: tuning.GetStartSettle(),
	}, nil
}

// State returns a copy of the current loop state.
func (r *Runner) State() State { return r.state }

// Run presses the start key after the start delay, then steps the loop every
// interval until ctx is cancelled. Cancellation is observed between
// iterations; the iteration in progress always completes. Run returns the
// final summary and a nil error on cancellation.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.state.StartedAt = r.clock.Now()

	fmt.Fprintln(r.out, "\n==================================================")
	fmt.Fprintf(r.out, "Starting in %s...\n", r.startDelay)
	fmt.Fprintln(r.out, "Make sure the game window is active!")
	fmt.Fprintln(r.out, "Press Ctrl+C to stop")
	fmt.Fprintln(r.out, "==================================================")

	r.clock.Sleep(r.startDelay)
	if ctx.Err() != nil {
		return r.stop(), nil
	}

	// The start press is not a detection jump: it is neither counted nor
	// subject to the cooldown.
	if err := r.actuator.Jump(); err != nil {
		monitoring.Logf("start key failed: %v", err)
	}
	r.clock.Sleep(r.startSettle)

	fmt.Fprintf(r.out, "\nBot is playing! Scanning %s every %s\n\n", r.region, r.interval)

	for ctx.Err() == nil {
		r.Step()
		r.clock.Sleep(r.interval)
	}
	return r.stop(), nil
}

func (r *Runner) stop() Summary {
	s := Summary{State: r.state, Duration: r.clock.Since(r.state.StartedAt)}
	fmt.Fprintf(r.out, "\n\nStopped! Total jumps: %d\n", s.Jumps)
	monitoring.Logf("run finished: %s", s)
	return s
}

// Step runs one sense-decide-act iteration and reports whether it jumped.
// It never returns an error: sampling failures go through the policy and
// actuator failures are logged.
func (r *Runner) Step() bool {
	now := r.clock.Now()

	res, err := r.sense()
	if err != nil {
		r.state.Errors++
		res = r.policy(err)
	}
	r.state.Frames++

	jumped := false
	if res.Obstacle {
		r.state.Obstacles++
		if r.cooldown.Ready(now) {
			jumped = r.jump(now)
		} else {
			r.state.Suppressed++
		}
	}

	if r.recorder != nil {
		if rerr := r.recorder.Record(SampleRecord{At: now, Result: res, Jumped: jumped, Err: err}); rerr != nil {
			monitoring.Logf("recorder: %v", rerr)
		}
	}
	return jumped
}

func (r *Runner) jump(now time.Time) bool {
	if err := r.actuator.Jump(); err != nil {
		r.state.ActuatorErrors++
		monitoring.Logf("jump failed: %v", err)
		return false
	}
	r.cooldown.Mark(now)
	r.state.LastJump = now
	r.state.Jumps++
	fmt.Fprintf(r.out, "Jump #%d\r", r.state.Jumps)
	return true
}

// sense captures and classifies one sample. A panic from the capture backend
// is converted into an error.
func (r *Runner) sense() (res detect.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("capture panicked: %v", p)
		}
	}()

	sample, err := r.capturer.Capture(r.region)
	if err != nil {
		return detect.Result{}, err
	}
	return r.detector.Classify(sample.Image)
}
