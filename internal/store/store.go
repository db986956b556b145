// Package store persists evaluations and the service call journal in
// SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EvaluationRepo returns an EvaluationRepo backed by this store.
func (s *Store) EvaluationRepo() EvaluationRepo {
	return &evaluationRepo{db: s.db, seq: s.seq}
}

// CallRepo returns a CallRepo backed by this store.
func (s *Store) CallRepo() CallRepo {
	return &callRepo{db: s.db, seq: s.seq}
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			sequence INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			student TEXT NOT NULL DEFAULT '',
			session TEXT NOT NULL DEFAULT '',
			engagement_score INTEGER NOT NULL,
			typing_style TEXT NOT NULL,
			similarity_score REAL NOT NULL,
			submission TEXT NOT NULL,
			report TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS service_calls (
			id INTEGER PRIMARY KEY,
			sequence INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			service TEXT NOT NULL,
			backend TEXT NOT NULL,
			purpose TEXT NOT NULL,
			items INTEGER NOT NULL DEFAULT 0,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_sequence ON evaluations(sequence);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_student ON evaluations(student);`,
		`CREATE INDEX IF NOT EXISTS idx_service_calls_sequence ON service_calls(sequence);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// applyPragmas configures SQLite for single-user CLI use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ESSAYLENS_DB environment variable
// 2. $XDG_DATA_HOME/essaylens/essaylens.db
// 3. ~/.local/share/essaylens/essaylens.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ESSAYLENS_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "essaylens", "essaylens.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
