// Package store persists the last-known-good notification feed per user so
// a restarted client rehydrates instead of showing an empty feed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/echoverse/synccore/internal/models"
)

// SQLiteStore keeps one feed snapshot row per user.
type SQLiteStore struct {
	conn *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) init() error {
	query := `CREATE TABLE IF NOT EXISTS feed_snapshots (
		user_id INTEGER PRIMARY KEY,
		records TEXT NOT NULL,
		read_ids TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := s.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to init snapshot schema: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for a user, or empty results when none
// exists.
func (s *SQLiteStore) Load(ctx context.Context, userID int64) ([]models.Notification, []string, error) {
	var recordsJSON, readIDsJSON string
	err := s.conn.QueryRowContext(ctx,
		`SELECT records, read_ids FROM feed_snapshots WHERE user_id = ?`, userID,
	).Scan(&recordsJSON, &readIDsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var records []models.Notification
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal snapshot records: %w", err)
	}
	var readIDs []string
	if err := json.Unmarshal([]byte(readIDsJSON), &readIDs); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal snapshot read ids: %w", err)
	}

	return records, readIDs, nil
}

// Save upserts the snapshot for a user.
func (s *SQLiteStore) Save(ctx context.Context, userID int64, records []models.Notification, readIDs []string) error {
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot records: %w", err)
	}
	if readIDs == nil {
		readIDs = []string{}
	}
	readIDsJSON, err := json.Marshal(readIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot read ids: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO feed_snapshots (user_id, records, read_ids, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			records = excluded.records,
			read_ids = excluded.read_ids,
			updated_at = excluded.updated_at`,
		userID, string(recordsJSON), string(readIDsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
