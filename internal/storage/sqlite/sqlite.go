// Package sqlite implements the entity store on an embedded SQLite database,
// the default for local single-user mode. Tests use ":memory:".
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/storage"

	_ "modernc.org/sqlite"
)

// Store implements storage.Store over a SQLite database.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS exercises (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	body_part TEXT NOT NULL,
	category  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS template_exercises (
	template_id TEXT NOT NULL REFERENCES templates(id),
	exercise_id TEXT NOT NULL REFERENCES exercises(id),
	position    INTEGER NOT NULL,
	PRIMARY KEY (template_id, position)
);

CREATE TABLE IF NOT EXISTS working_sets (
	id           TEXT PRIMARY KEY,
	exercise_id  TEXT NOT NULL REFERENCES exercises(id),
	created_at   INTEGER NOT NULL,
	reps         INTEGER NOT NULL DEFAULT 0,
	weight       REAL NOT NULL DEFAULT 0,
	is_completed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_working_sets_exercise ON working_sets (exercise_id, created_at);

CREATE TABLE IF NOT EXISTS workout_sessions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	start_time    INTEGER NOT NULL,
	end_time      INTEGER,
	is_completed  INTEGER NOT NULL DEFAULT 0,
	template_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS exercise_sessions (
	id                 TEXT PRIMARY KEY,
	workout_session_id TEXT NOT NULL REFERENCES workout_sessions(id),
	position           INTEGER NOT NULL,
	exercise_name      TEXT NOT NULL,
	body_part          TEXT NOT NULL,
	category           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exercise_sessions_workout ON exercise_sessions (workout_session_id, position);
CREATE INDEX IF NOT EXISTS idx_exercise_sessions_name ON exercise_sessions (exercise_name);

CREATE TABLE IF NOT EXISTS completed_sets (
	id                  TEXT PRIMARY KEY,
	exercise_session_id TEXT NOT NULL REFERENCES exercise_sessions(id),
	set_number          INTEGER NOT NULL,
	reps                INTEGER NOT NULL,
	weight              REAL NOT NULL,
	completed_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_completed_sets_session ON completed_sets (exercise_session_id, set_number);
`

// Open opens (or creates) the SQLite database at the given path and ensures
// the schema exists. Pass ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single connection: the session model is single-writer, and an
	// in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are stored as integer nanoseconds so ordering never depends on
// string formats.
func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// placeholders returns "?,?,...,?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
