package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryPath keeps the journal for the lifetime of the process only.
const MemoryPath = ":memory:"

// InitDB opens/creates a SQLite DB and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	if path == "" {
		path = MemoryPath
	}
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// A single connection also keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaBackendStatus = `
CREATE TABLE IF NOT EXISTS backend_status (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    address TEXT NOT NULL,
    reachable BOOLEAN NOT NULL,
    last_error TEXT,
    failures INTEGER NOT NULL DEFAULT 0,
    checked_at TIMESTAMP NOT NULL,
    reachable_at TIMESTAMP
);
`

const schemaWizardEvents = `
CREATE TABLE IF NOT EXISTS wizard_events (
    id TEXT PRIMARY KEY,
    session_id TEXT,
    operator_id INTEGER,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const indexWizardEvents = `
CREATE INDEX IF NOT EXISTS idx_wizard_events_session ON wizard_events (session_id, occurred_at);
`

const indexWizardEventsOperator = `
CREATE INDEX IF NOT EXISTS idx_wizard_events_operator ON wizard_events (operator_id, occurred_at);
`

const schemaOperators = `
CREATE TABLE IF NOT EXISTS operators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaBackendStatus,
		schemaWizardEvents,
		indexWizardEvents,
		indexWizardEventsOperator,
		schemaOperators,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
