// Package db stores recorded play sessions in SQLite: one row per session and
// one row per loop iteration.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSessionNotFound is returned when a session ID has no row.
var ErrSessionNotFound = errors.New("session not found")

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"foreign_keys(ON)",
}

type DB struct {
	*sql.DB
}

// OpenDB opens (or creates) the database at path and migrates it to the
// latest schema.
func OpenDB(path string) (*DB, error) {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sqlDB, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Region is a stored rectangle in screen pixels.
type Region struct {
	Left, Top, Right, Bottom int
}

// Session is one recorded run.
type Session struct {
	SessionID     string
	StartedAt     time.Time
	EndedAt       time.Time // zero while the run is in progress
	Mode          string
	PlayArea      Region
	Detection     Region
	DarkThreshold int
	ObstacleRatio float64
	Cooldown      time.Duration

	Frames    int
	Obstacles int
	Jumps     int
	Errors    int
}

func (s *Session) String() string {
	return fmt.Sprintf("Session<%s mode=%s started=%s frames=%d jumps=%d>",
		s.SessionID, s.Mode, s.StartedAt.Format(time.RFC3339), s.Frames, s.Jumps)
}

// SampleRow is one loop iteration.
type SampleRow struct {
	SessionID   string
	At          time.Time
	DarkPixels  int
	TotalPixels int
	Ratio       float64
	Obstacle    bool
	Jumped      bool
	Error       string
}

// CreateSession inserts a new session row.
func (db *DB) CreateSession(s *Session) error {
	if s.SessionID == "" {
		return errors.New("session id is required")
	}
	_, err := db.Exec(`
		INSERT INTO sessions (
			session_id, started_at, mode,
			play_left, play_top, play_right, play_bottom,
			det_left, det_top, det_right, det_bottom,
			dark_threshold, obstacle_ratio, cooldown_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.StartedAt.UnixNano(), s.Mode,
		s.PlayArea.Left, s.PlayArea.Top, s.PlayArea.Right, s.PlayArea.Bottom,
		s.Detection.Left, s.Detection.Top, s.Detection.Right, s.Detection.Bottom,
		s.DarkThreshold, s.ObstacleRatio, int64(s.Cooldown),
	)
	if err != nil {
		return fmt.Errorf("create session %s: %w", s.SessionID, err)
	}
	return nil
}

// FinishSession stores the end time and totals of a session.
func (db *DB) FinishSession(s *Session) error {
	res, err := db.Exec(`
		UPDATE sessions
		SET ended_at = ?, frames = ?, obstacles = ?, jumps = ?, errors = ?
		WHERE session_id = ?`,
		s.EndedAt.UnixNano(), s.Frames, s.Obstacles, s.Jumps, s.Errors, s.SessionID,
	)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", s.SessionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish session %s: %w", s.SessionID, ErrSessionNotFound)
	}
	return nil
}

// InsertSamples writes rows in a single transaction.
func (db *DB) InsertSamples(rows []SampleRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (
			session_id, ts_unix_nanos, dark_pixels, total_pixels, ratio, obstacle, jumped, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		var errText sql.NullString
		if r.Error != "" {
			errText = sql.NullString{String: r.Error, Valid: true}
		}
		if _, err := stmt.Exec(r.SessionID, r.At.UnixNano(), r.DarkPixels, r.TotalPixels, r.Ratio,
			boolToInt(r.Obstacle), boolToInt(r.Jumped), errText); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	return tx.Commit()
}

const sessionColumns = `
	session_id, started_at, ended_at, mode,
	play_left, play_top, play_right, play_bottom,
	det_left, det_top, det_right, det_bottom,
	dark_threshold, obstacle_ratio, cooldown_ns,
	frames, obstacles, jumps, errors`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		s                 Session
		started, cooldown int64
		ended             sql.NullInt64
	)
	err := row.Scan(
		&s.SessionID, &started, &ended, &s.Mode,
		&s.PlayArea.Left, &s.PlayArea.Top, &s.PlayArea.Right, &s.PlayArea.Bottom,
		&s.Detection.Left, &s.Detection.Top, &s.Detection.Right, &s.Detection.Bottom,
		&s.DarkThreshold, &s.ObstacleRatio, &cooldown,
		&s.Frames, &s.Obstacles, &s.Jumps, &s.Errors,
	)
	if err != nil {
		return nil, err
	}
	s.StartedAt = time.Unix(0, started).UTC()
	if ended.Valid {
		s.EndedAt = time.Unix(0, ended.Int64).UTC()
	}
	s.Cooldown = time.Duration(cooldown)
	return &s, nil
}

// Sessions returns all sessions, most recent first.
func (db *DB) Sessions() ([]*Session, error) {
	rows, err := db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Session returns the session with the given ID.
func (db *DB) Session(id string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, err
}

// LatestSession returns the most recently started session.
func (db *DB) LatestSession() (*Session, error) {
	s, err := scanSession(db.QueryRow(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// Samples returns a session's samples in time order.
func (db *DB) Samples(sessionID string) ([]SampleRow, error) {
	rows, err := db.Query(`
		SELECT ts_unix_nanos, dark_pixels, total_pixels, ratio, obstacle, jumped, error
		FROM samples
		WHERE session_id = ?
		ORDER BY ts_unix_nanos ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var (
			r                SampleRow
			ts               int64
			obstacle, jumped int
			errText          sql.NullString
		)
		if err := rows.Scan(&ts, &r.DarkPixels, &r.TotalPixels, &r.Ratio, &obstacle, &jumped, &errText); err != nil {
			return nil, err
		}
		r.SessionID = sessionID
		r.At = time.Unix(0, ts).UTC()
		r.Obstacle = obstacle != 0
		r.Jumped = jumped != 0
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
