// Package replay provides SQLite-based decision log storage. A run is
// one seeded arena simulation; its log entries are stored verbatim so
// a decision sequence can be inspected long after the process exits.
package replay

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Garsondee/OpFor-Mind/internal/ai"
)

// DB wraps a SQLite connection for replay storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a replay database at the given path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		agent TEXT NOT NULL,
		category TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		num_val REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one recorded simulation.
type Run struct {
	ID        string `db:"id"`
	Scenario  string `db:"scenario"`
	Seed      int64  `db:"seed"`
	Ticks     int    `db:"ticks"`
	StartedAt string `db:"started_at"`
}

// Event is one stored decision log entry.
type Event struct {
	ID       int64   `db:"id"`
	RunID    string  `db:"run_id"`
	Tick     int     `db:"tick"`
	Agent    string  `db:"agent"`
	Category string  `db:"category"`
	Key      string  `db:"key"`
	Value    string  `db:"value"`
	NumVal   float64 `db:"num_val"`
}

// SaveRun stores a completed run with its full decision log and
// returns the generated run ID.
func (db *DB) SaveRun(scenario string, seed int64, ticks int, entries []ai.LogEntry) (string, error) {
	runID := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, scenario, seed, ticks, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, scenario, seed, ticks, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(
		`INSERT INTO events (run_id, tick, agent, category, key, value, num_val)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare events: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(runID, e.Tick, e.Agent, e.Category, e.Key, e.Value, e.NumVal); err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// Runs lists stored runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	if err := db.conn.Select(&runs, `SELECT * FROM runs ORDER BY started_at DESC`); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Events returns a run's log entries in tick order.
func (db *DB) Events(runID string) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		`SELECT * FROM events WHERE run_id = ? ORDER BY tick, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}

// RecentEvents returns the last n log entries of a run in tick order.
func (db *DB) RecentEvents(runID string, n int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		`SELECT * FROM (
			SELECT * FROM events WHERE run_id = ? ORDER BY tick DESC, id DESC LIMIT ?
		) ORDER BY tick, id`,
		runID, n)
	if err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}
	return events, nil
}

// EventsByCategory filters one run's entries by log category.
func (db *DB) EventsByCategory(runID, category string) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		`SELECT * FROM events WHERE run_id = ? AND category = ? ORDER BY tick, id`,
		runID, category)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}
