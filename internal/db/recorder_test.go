package db

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/dinobot/internal/config"
	"github.com/banshee-data/dinobot/internal/detect"
	"github.com/banshee-data/dinobot/internal/region"
	"github.com/banshee-data/dinobot/internal/runner"
)

func testCalibration(t *testing.T) region.Calibration {
	t.Helper()
	cal, err := region.Heuristic(1920, 1080, 100)
	require.NoError(t, err)
	return cal
}

func batchConfig(n int) *config.TuningConfig {
	cfg := config.EmptyTuningConfig()
	cfg.RecordBatchSize = &n
	return cfg
}

func record(i int, obstacle, jumped bool) runner.SampleRecord {
	res := detect.Result{DarkPixels: 0, TotalPixels: 100}
	if obstacle {
		res = detect.Result{DarkPixels: 50, TotalPixels: 100, Ratio: 0.5, Obstacle: true}
	}
	return runner.SampleRecord{At: t0.Add(time.Duration(i) * 33 * time.Millisecond), Result: res, Jumped: jumped}
}

func TestSessionRecorder_CreatesSession(t *testing.T) {
	db := setupTestDB(t)
	rec, err := NewSessionRecorder(db, testCalibration(t), nil, t0)
	require.NoError(t, err)

	_, err = uuid.Parse(rec.SessionID())
	assert.NoError(t, err)

	s, err := db.Session(rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "heuristic", s.Mode)
	assert.Equal(t, Region{673, 393, 1246, 686}, s.Detection)
	assert.Equal(t, Region{100, 100, 1820, 980}, s.PlayArea)
	assert.Equal(t, config.DefaultDarkThreshold, s.DarkThreshold)
	assert.Equal(t, config.DefaultCooldown, s.Cooldown)
}

func TestSessionRecorder_Batches(t *testing.T) {
	db := setupTestDB(t)
	rec, err := NewSessionRecorder(db, testCalibration(t), batchConfig(3), t0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, rec.Record(record(i, false, false)))
	}
	rows, err := db.Samples(rec.SessionID())
	require.NoError(t, err)
	assert.Empty(t, rows, "nothing written before the batch fills")

	require.NoError(t, rec.Record(record(2, true, true)))
	rows, err = db.Samples(rec.SessionID())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[2].Jumped)
	assert.InDelta(t, 0.5, rows[2].Ratio, 1e-12)

	require.NoError(t, rec.Record(runner.SampleRecord{At: t0.Add(time.Second), Err: errors.New("capture failed")}))
	sum := runner.Summary{
		State:    runner.State{StartedAt: t0, Frames: 4, Obstacles: 1, Jumps: 1, Errors: 1},
		Duration: 2 * time.Second,
	}
	require.NoError(t, rec.Finish(sum))

	rows, err = db.Samples(rec.SessionID())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "capture failed", rows[3].Error)

	s, err := db.Session(rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, t0.Add(2*time.Second), s.EndedAt)
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, 1, s.Jumps)
	assert.Equal(t, 1, s.Errors)
}

func TestSessionRecorder_FlushErrorDropsBatch(t *testing.T) {
	db := setupTestDB(t)
	rec, err := NewSessionRecorder(db, testCalibration(t), batchConfig(2), t0)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, rec.Record(record(0, false, false)))
	err = rec.Record(record(1, false, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush 2 samples")
	assert.Empty(t, rec.pending)
}

func TestSessionRecorder_ImplementsRecorder(t *testing.T) {
	var _ runner.Recorder = (*SessionRecorder)(nil)
}
