// Package sqlite backs the daily image-usage counter with a local
// SQLite file, for deployments without access to a managed store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS image_usage (
	user_id TEXT NOT NULL,
	day     TEXT NOT NULL,
	images  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, day)
)`

// Store implements domain.QuotaStore on a single SQLite connection.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and prepares the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite is single-writer by design. A single shared connection
	// serializes concurrent callers through database/sql instead of
	// having them fight for write locks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// IncrementAndGet performs the atomic add-1-and-return as a single
// upsert statement.
func (s *Store) IncrementAndGet(ctx context.Context, userID, day string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO image_usage (user_id, day, images) VALUES (?, ?, 1)
		ON CONFLICT(user_id, day) DO UPDATE SET images = images + 1
		RETURNING images`,
		userID, day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite increment: %w", err)
	}
	return count, nil
}

// Get reads the counter without modifying it.
func (s *Store) Get(ctx context.Context, userID, day string) (int, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT images FROM image_usage WHERE user_id = ? AND day = ?`,
		userID, day,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite get: %w", err)
	}
	return count, true, nil
}
