package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteBackend keeps records in the session_data table of a local SQLite file.
// The schema is created by database.OpenSQLite.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db, now: time.Now}
}

func (r *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT value, expires_at FROM session_data WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session_data[%s]: %w", key, err)
	}
	if expiresAt.Valid && r.now().UnixMilli() >= expiresAt.Int64 {
		if err := r.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return value, nil
}

func (r *SQLiteBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := r.now()
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_data (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key, value, expiresAt, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set session_data[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_data WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete session_data[%s]: %w", key, err)
	}
	return nil
}

// PurgeExpired removes rows whose expiry has passed and returns how many went.
func (r *SQLiteBackend) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_data WHERE expires_at IS NOT NULL AND expires_at <= ?`, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge session_data: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteBackend) Close() error {
	return r.db.Close()
}

// NewSQLite returns a Store backed by an already-migrated SQLite database.
func NewSQLite(db *sql.DB, sessionID string, opts ...Option) *Store {
	return New(NewSQLiteBackend(db), sessionID, opts...)
}
