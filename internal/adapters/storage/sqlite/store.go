package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// backendName labels errors, logs, and the health check.
const backendName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (unixepoch())
)`

// Store is a ports.KeyValueStore backed by SQLite.
type Store struct {
	sqlDB      *sql.DB
	path       string
	quotaBytes int64
}

// Open opens (creating if needed) the database at path and ensures the
// kv_entries table exists. quotaBytes bounds the summed size of keys and
// values; zero or less disables the limit.
func Open(ctx context.Context, path string, quotaBytes int64) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps the quota check and the write in the same view.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("init sqlite db: %w", err)
		}
	}

	return &Store{sqlDB: sqlDB, path: cleanPath, quotaBytes: quotaBytes}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Name implements ports.KeyValueStore and ports.HealthChecker.
func (s *Store) Name() string {
	return backendName
}

// Path returns the cleaned database path.
func (s *Store) Path() string {
	return s.path
}

// GetItem implements ports.KeyValueStore.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.sqlDB == nil {
		return "", false, domain.NewStorageError(backendName, "get", key, errors.New("storage is not configured"))
	}

	var value string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.NewStorageError(backendName, "get", key, err)
	}

	return value, true, nil
}

// SetItem implements ports.KeyValueStore. The quota check and the upsert run
// in one transaction.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if s == nil || s.sqlDB == nil {
		return domain.NewStorageError(backendName, "set", key, errors.New("storage is not configured"))
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(backendName, "set", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.quotaBytes > 0 {
		var used int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0)
			 FROM kv_entries WHERE key <> ?`, key,
		).Scan(&used)
		if err != nil {
			return domain.NewStorageError(backendName, "set", key, err)
		}

		if used+int64(len(key)+len(value)) > s.quotaBytes {
			return domain.NewStorageError(backendName, "set", key,
				fmt.Errorf("%w: %d byte limit", domain.ErrQuotaExceeded, s.quotaBytes))
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, unixepoch())
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return domain.NewStorageError(backendName, "set", key, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(backendName, "set", key, err)
	}

	return nil
}

// RemoveItem implements ports.KeyValueStore.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return domain.NewStorageError(backendName, "remove", key, errors.New("storage is not configured"))
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return domain.NewStorageError(backendName, "remove", key, err)
	}

	return nil
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return domain.NewStorageError(backendName, "ping", "", errors.New("storage is not configured"))
	}

	if err := s.sqlDB.PingContext(ctx); err != nil {
		return domain.NewStorageError(backendName, "ping", "", err)
	}

	return nil
}
