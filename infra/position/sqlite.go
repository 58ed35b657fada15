package position

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores anchors in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating position db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening position db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting wal mode: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating position db: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS positions (
		source_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (source_id, account_id)
	);`)
	return err
}

func (s *SQLite) Position(ctx context.Context, sourceID, accountID string) (string, bool, error) {
	var postID string
	err := s.db.QueryRowContext(ctx,
		"SELECT post_id FROM positions WHERE source_id = ? AND account_id = ?",
		sourceID, accountID,
	).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading position: %w", err)
	}
	return postID, true, nil
}

func (s *SQLite) SetPosition(ctx context.Context, sourceID, accountID, postID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (source_id, account_id, post_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id, account_id) DO UPDATE SET
			post_id = excluded.post_id,
			updated_at = excluded.updated_at
	`, sourceID, accountID, postID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing position: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// DefaultSQLitePath returns the default database location.
func DefaultSQLitePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "positions.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "terminalfeed", "positions.db")
}
