package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path, ensures the data
// directory exists, and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page renders read while a warm run writes; writers wait on
	// busy instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    type TEXT NOT NULL,
    uid TEXT NOT NULL,
    body BLOB NOT NULL,
    fetched_at INTEGER NOT NULL,
    PRIMARY KEY (type, uid)
);
CREATE INDEX IF NOT EXISTS documents_type_fetched ON documents (type, fetched_at DESC);
`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, docType, uid string) (Entry, error) {
	var body []byte
	var fetched int64
	err := s.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM documents WHERE type = ? AND uid = ?`, docType, uid).
		Scan(&body, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{Type: docType, UID: uid, Body: body, FetchedAt: time.Unix(0, fetched)}, nil
}

// Put upserts e. A zero FetchedAt is stamped with the current time.
func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO documents (type, uid, body, fetched_at) VALUES (?, ?, ?, ?)`,
		e.Type, e.UID, e.Body, e.FetchedAt.UnixNano())
	return err
}

func (s *SQLiteStore) List(ctx context.Context, docType string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid, body, fetched_at FROM documents WHERE type = ? ORDER BY fetched_at DESC, uid`, docType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var uid string
		var body []byte
		var fetched int64
		if err := rows.Scan(&uid, &body, &fetched); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Type: docType, UID: uid, Body: body, FetchedAt: time.Unix(0, fetched)})
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	return err
}
