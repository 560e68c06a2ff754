package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kharidiron/pwstore/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is the SQLite implementation of the key-value mapping. The whole
// mapping lives in a single kv(bucket, key, value) table created by an
// embedded goose migration.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements the KV interface
var _ storage.KV = (*Storage)(nil)

// Open opens the SQLite database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
// A database held by another writer surfaces as storage.ErrStoreLocked.
func Open(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite with WAL mode supports multiple readers but a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 500;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		db.Close()
		if isBusy(err) {
			return nil, storage.ErrStoreLocked
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Probe the write lock up front so concurrent writers fail fast at
	// open time rather than in the middle of an operation.
	if err := s.probeLock(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) runMigrations() error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

func (s *Storage) probeLock(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return storage.ErrStoreLocked
		}
		return fmt.Errorf("failed to probe lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE 0"); err != nil {
		_ = tx.Rollback()
		if isBusy(err) {
			return storage.ErrStoreLocked
		}
		return fmt.Errorf("failed to probe lock: %w", err)
	}
	return tx.Commit()
}

// isBusy reports whether err is SQLite's busy/locked condition.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// Get retrieves the value stored under key.
func (s *Storage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value []byte

	query := "SELECT value FROM kv WHERE bucket = ? AND key = ?"
	err := s.db.QueryRowContext(ctx, query, bucket, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *Storage) Put(ctx context.Context, bucket, key string, value []byte) error {
	query := `
		INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)
		ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, bucket, key, value); err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, bucket, key string) error {
	query := "DELETE FROM kv WHERE bucket = ? AND key = ?"
	if _, err := s.db.ExecContext(ctx, query, bucket, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Keys returns every key currently present in the bucket.
func (s *Storage) Keys(ctx context.Context, bucket string) ([]string, error) {
	query := "SELECT key FROM kv WHERE bucket = ? ORDER BY key"
	rows, err := s.db.QueryContext(ctx, query, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}

	return keys, nil
}

// Apply executes the batch inside a single SQL transaction.
func (s *Storage) Apply(ctx context.Context, ops []storage.Op) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, op := range ops {
		switch op.Kind {
		case storage.OpPut:
			query := `
				INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)
				ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value`
			if _, err := tx.ExecContext(ctx, query, op.Bucket, op.Key, op.Value); err != nil {
				return fmt.Errorf("failed to put key: %w", err)
			}
		case storage.OpDelete:
			query := "DELETE FROM kv WHERE bucket = ? AND key = ?"
			if _, err := tx.ExecContext(ctx, query, op.Bucket, op.Key); err != nil {
				return fmt.Errorf("failed to delete key: %w", err)
			}
		default:
			return fmt.Errorf("unknown op kind: %d", op.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
