package artifactstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS artifacts (
    key TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// SQLiteStore keeps artifact payloads in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite initializes or connects to the artifact database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "artifactstore"),
	}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM artifacts WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query artifact %q: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (movieplot.Artifact, error) {
	if err := validateKey(key); err != nil {
		return movieplot.Artifact{}, err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM artifacts WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return movieplot.Artifact{}, services.Wrap(services.ErrNotFound, "artifactstore", "load", key, nil)
	}
	if err != nil {
		return movieplot.Artifact{}, fmt.Errorf("query artifact %q: %w", key, err)
	}
	artifact, err := movieplot.Decode([]byte(payload))
	if err != nil {
		return movieplot.Artifact{}, fmt.Errorf("load artifact %q: %w", key, err)
	}
	return artifact, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, artifact movieplot.Artifact) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := movieplot.Encode(artifact)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (key, title, payload, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
            title = excluded.title,
            payload = excluded.payload,
            updated_at = excluded.updated_at`,
		key,
		artifact.Title,
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save artifact %q: %w", key, err)
	}
	s.logger.Debug("artifact saved",
		logging.String(logging.FieldCacheKey, key),
		logging.String(logging.FieldTitle, artifact.Title))
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, length(CAST(payload AS BLOB)), updated_at FROM artifacts ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			updated string
		)
		if err := rows.Scan(&entry.Key, &entry.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan artifact row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			entry.UpdatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
