package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/dinobot/internal/config"
	"github.com/banshee-data/dinobot/internal/monitoring"
	"github.com/banshee-data/dinobot/internal/region"
	"github.com/banshee-data/dinobot/internal/runner"
)

// SessionRecorder buffers loop samples and writes them in batches.
// It implements runner.Recorder and is used only from the loop goroutine.
type SessionRecorder struct {
	db        *DB
	session   *Session
	batchSize int
	pending   []SampleRow
}

// NewSessionRecorder creates a session row for cal and returns a recorder
// for it.
func NewSessionRecorder(db *DB, cal region.Calibration, cfg *config.TuningConfig, startedAt time.Time) (*SessionRecorder, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	s := &Session{
		SessionID:     uuid.NewString(),
		StartedAt:     startedAt.UTC(),
		Mode:          string(cal.Mode),
		PlayArea:      fromRegion(cal.PlayArea),
		Detection:     fromRegion(cal.Detection),
		DarkThreshold: int(cfg.GetDarkThreshold()),
		ObstacleRatio: cfg.GetObstacleRatio(),
		Cooldown:      cfg.GetCooldown(),
	}
	if err := db.CreateSession(s); err != nil {
		return nil, err
	}
	monitoring.Logf("recording session %s", s.SessionID)

	size := cfg.GetRecordBatchSize()
	if size < 1 {
		size = 1
	}
	return &SessionRecorder{
		db:        db,
		session:   s,
		batchSize: size,
		pending:   make([]SampleRow, 0, size),
	}, nil
}

// SessionID returns the ID of the session being recorded.
func (r *SessionRecorder) SessionID() string { return r.session.SessionID }

// Record buffers one iteration and flushes when the batch is full.
func (r *SessionRecorder) Record(rec runner.SampleRecord) error {
	row := SampleRow{
		SessionID:   r.session.SessionID,
		At:          rec.At.UTC(),
		DarkPixels:  rec.Result.DarkPixels,
		TotalPixels: rec.Result.TotalPixels,
		Ratio:       rec.Result.Ratio,
		Obstacle:    rec.Result.Obstacle,
		Jumped:      rec.Jumped,
	}
	if rec.Err != nil {
		row.Error = rec.Err.Error()
	}
	r.pending = append(r.pending, row)

	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes buffered samples. On failure the batch is dropped so one bad
// write does not grow the buffer without bound.
func (r *SessionRecorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	err := r.db.InsertSamples(r.pending)
	dropped := len(r.pending)
	r.pending = r.pending[:0]
	if err != nil {
		return fmt.Errorf("flush %d samples: %w", dropped, err)
	}
	return nil
}

// Finish flushes remaining samples and stores the run totals.
func (r *SessionRecorder) Finish(sum runner.Summary) error {
	flushErr := r.Flush()

	r.session.EndedAt = sum.StartedAt.Add(sum.Duration).UTC()
	r.session.Frames = sum.Frames
	r.session.Obstacles = sum.Obstacles
	r.session.Jumps = sum.Jumps
	r.session.Errors = sum.Errors
	if err := r.db.FinishSession(r.session); err != nil {
		return err
	}
	return flushErr
}

func fromRegion(rg region.Region) Region {
	return Region{Left: rg.Left, Top: rg.Top, Right: rg.Right, Bottom: rg.Bottom}
}
