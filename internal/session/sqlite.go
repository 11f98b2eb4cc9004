package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    identity       TEXT PRIMARY KEY NOT NULL CHECK (identity <> ''),
    display_name   TEXT NOT NULL DEFAULT '',
    auth_blob      TEXT NOT NULL,
    secondary_blob TEXT NOT NULL DEFAULT '{}',
    last_used      INTEGER NOT NULL DEFAULT 0,
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_used ON sessions(last_used, identity);
`

const selectColumns = `identity, display_name, auth_blob, secondary_blob, last_used, created_at, updated_at`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	// Blobs are live credentials.
	_ = os.Chmod(dbPath, 0o600)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(identity string) (*Session, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM sessions WHERE identity = ?`, identity)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) List(order Order) ([]Session, error) {
	orderBy := "last_used ASC, identity ASC"
	if order == ByLastUsedDesc {
		orderBy = "last_used DESC, identity ASC"
	}

	rows, err := s.db.Query(`SELECT ` + selectColumns + ` FROM sessions ORDER BY ` + orderBy)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) Insert(snap Snapshot, now int64) error {
	if snap.Identity == "" {
		return ErrEmptyIdentity
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions
			(identity, display_name, auth_blob, secondary_blob, last_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		snap.Identity, snap.DisplayName, snap.AuthBlob, snap.SecondaryBlob, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateBlobs replaces the payload of an existing session. updated_at
// never moves backwards, even if the clock does.
func (s *SQLiteStore) UpdateBlobs(snap Snapshot, now int64) error {
	result, err := s.db.Exec(`
		UPDATE sessions
		SET display_name = ?, auth_blob = ?, secondary_blob = ?, updated_at = MAX(updated_at, ?)
		WHERE identity = ?`,
		snap.DisplayName, snap.AuthBlob, snap.SecondaryBlob, now, snap.Identity,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireOneRow(result, snap.Identity)
}

func (s *SQLiteStore) TouchLastUsed(identity string, now int64) error {
	result, err := s.db.Exec(`UPDATE sessions SET last_used = ? WHERE identity = ?`, now, identity)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return requireOneRow(result, identity)
}

func (s *SQLiteStore) Delete(identity string) error {
	result, err := s.db.Exec("DELETE FROM sessions WHERE identity = ?", identity)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireOneRow(result, identity)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	err := row.Scan(
		&sess.Identity, &sess.DisplayName, &sess.AuthBlob, &sess.SecondaryBlob,
		&sess.LastUsed, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func requireOneRow(result sql.Result, identity string) error {
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	return nil
}
