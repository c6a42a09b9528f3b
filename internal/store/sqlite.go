package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createProgramsTable = `
CREATE TABLE IF NOT EXISTS programs (
    name          TEXT PRIMARY KEY,
    source_hash   TEXT NOT NULL,
    bytes         BLOB NOT NULL,
    registered_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ ProgramStore = (*SQLiteStore)(nil)

// SQLiteStore implements ProgramStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createProgramsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create programs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveProgram upserts a registration. Last write wins under a reused
// name, matching the program cache's semantics.
func (s *SQLiteStore) SaveProgram(ctx context.Context, rec *ProgramRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO programs (name, source_hash, bytes, registered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_hash = excluded.source_hash,
			bytes = excluded.bytes,
			registered_at = excluded.registered_at`,
		rec.Name, rec.SourceHash, rec.Bytes, rec.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	return nil
}

// GetProgram retrieves a persisted registration by name.
func (s *SQLiteStore) GetProgram(ctx context.Context, name string) (*ProgramRecord, error) {
	rec := &ProgramRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, source_hash, bytes, registered_at
		FROM programs WHERE name = ?`, name,
	).Scan(&rec.Name, &rec.SourceHash, &rec.Bytes, &rec.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return rec, nil
}

// ListPrograms returns every persisted registration ordered by name, for
// cache repopulation at startup.
func (s *SQLiteStore) ListPrograms(ctx context.Context) ([]*ProgramRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source_hash, bytes, registered_at
		FROM programs ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var recs []*ProgramRecord
	for rows.Next() {
		rec := &ProgramRecord{}
		if err := rows.Scan(&rec.Name, &rec.SourceHash, &rec.Bytes, &rec.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}

	return recs, nil
}
