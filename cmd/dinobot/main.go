package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/dinobot/internal/actuate"
	"github.com/banshee-data/dinobot/internal/actuate/desktop"
	"github.com/banshee-data/dinobot/internal/calibration"
	"github.com/banshee-data/dinobot/internal/capture"
	"github.com/banshee-data/dinobot/internal/config"
	"github.com/banshee-data/dinobot/internal/db"
	"github.com/banshee-data/dinobot/internal/runner"
	"github.com/banshee-data/dinobot/internal/timeutil"
	"github.com/banshee-data/dinobot/internal/version"
)

var (
	configPath   = flag.String("config", "", "Path to tuning JSON (built-in defaults when empty)")
	recordPath   = flag.String("record", "", "Record every sample to this SQLite database")
	replayDir    = flag.String("replay", "", "Read PNG frames from this directory instead of the screen (implies -dry-run)")
	dryRun       = flag.Bool("dry-run", false, "Log jumps instead of sending input")
	actuatorKind = flag.String("actuator", "keyboard", "Jump output: keyboard or serial")
	serialPort   = flag.String("serial-port", "", "Serial port of the HID bridge (with -actuator=serial)")
	serialBaud   = flag.Int("serial-baud", 115200, "Baud rate for -serial-port")
	jumpKey      = flag.String("key", "", "Key tapped for each jump (overrides jump_key in -config)")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

var errUnknownActuator = errors.New("unknown actuator")

// loadTuning returns the tuning from path, or the defaults when path is
// empty, with the -key override applied.
func loadTuning(path, key string) (*config.TuningConfig, error) {
	cfg := config.DefaultTuningConfig()
	if path != "" {
		loaded, err := config.LoadTuningConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if key != "" {
		cfg.JumpKey = &key
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	return cfg, nil
}

// source returns the capturer and the screen size used for calibration.
func source(replay string) (capture.Capturer, calibration.ScreenSizer, error) {
	if replay == "" {
		sc := capture.NewScreenCapturer()
		return sc, sc, nil
	}
	rc, err := capture.NewReplayCapturer(replay, timeutil.RealClock{})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("replaying %d frames from %s", rc.Len(), replay)
	return rc, rc, nil
}

func newActuator(kind string, dry bool, port string, baud int, cfg *config.TuningConfig) (actuate.Actuator, error) {
	if dry {
		return &actuate.DryRun{}, nil
	}
	switch kind {
	case "keyboard":
		return desktop.NewKeyboard(cfg.GetJumpKey()), nil
	case "serial":
		if port == "" {
			return nil, errors.New("-serial-port is required with -actuator=serial")
		}
		s, err := actuate.OpenSerial(port, actuate.PortOptions{BaudRate: baud}, "")
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w %q (want keyboard or serial)", errUnknownActuator, kind)
	}
}

func banner() {
	fmt.Println("==================================================")
	fmt.Println("Google Dinosaur Game Auto-Player")
	fmt.Println("==================================================")
}

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("dinobot %s\n", version.String())
		return
	}

	tuning, err := loadTuning(*configPath, *jumpKey)
	if err != nil {
		log.Fatalf("failed to load tuning: %v", err)
	}

	capturer, screen, err := source(*replayDir)
	if err != nil {
		log.Fatalf("failed to open frame source: %v", err)
	}

	banner()

	// Ctrl-C during calibration exits the process directly; signal handling
	// is installed once the loop is about to start.
	cal, err := calibration.New(os.Stdin, os.Stdout, desktop.Pointer{}, screen, tuning).Run(context.Background())
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	act, err := newActuator(*actuatorKind, *dryRun || *replayDir != "", *serialPort, *serialBaud, tuning)
	if err != nil {
		log.Fatalf("failed to create actuator: %v", err)
	}
	defer act.Close()

	var (
		recorder runner.Recorder
		session  *db.SessionRecorder
	)
	if *recordPath != "" {
		database, err := db.OpenDB(*recordPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer database.Close()

		session, err = db.NewSessionRecorder(database, cal, tuning, time.Now())
		if err != nil {
			log.Fatalf("failed to start session: %v", err)
		}
		recorder = session
	}

	r, err := runner.New(runner.Config{
		Region:   cal.Detection,
		Capturer: capturer,
		Actuator: act,
		Tuning:   tuning,
		Out:      os.Stdout,
		Recorder: recorder,
	})
	if err != nil {
		log.Fatalf("failed to create runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := r.Run(ctx)
	if err != nil {
		log.Printf("run ended with error: %v", err)
	}

	if session != nil {
		if err := session.Finish(sum); err != nil {
			log.Printf("failed to finish session: %v", err)
		} else {
			fmt.Printf("Session %s recorded to %s\n", session.SessionID(), *recordPath)
		}
	}
}
