// Package sqlite provides SQLite-based persistent storage for Grit.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Key-value store for progression state components (ledger,
		// streaks, energy, reset bookkeeping, power-ups).
		`CREATE TABLE IF NOT EXISTS progression (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Append-only XP transaction journal.
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			amount    INTEGER NOT NULL,
			reason    TEXT,
			balance   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_ts ON xp_ledger(timestamp)`,

		// Event journal (level-ups, breaks, penalties, power-up activity)
		// with a shown flag for frontends that poll.
		`CREATE TABLE IF NOT EXISTS events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at)`,

		// Tasks judged for overdue penalties at the daily reset.
		`CREATE TABLE IF NOT EXISTS tasks (
			id        TEXT PRIMARY KEY,
			title     TEXT NOT NULL DEFAULT '',
			completed BOOLEAN DEFAULT 0,
			due_date  INTEGER,
			xp_reward INTEGER NOT NULL DEFAULT 0,
			priority  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Progression Key-Value ──────────────────────────────────────────────────

// SetProgression stores a progression key-value pair.
func (d *DB) SetProgression(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO progression (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetProgression retrieves a progression value by key.
// Returns "" if key not found.
func (d *DB) GetProgression(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM progression WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
