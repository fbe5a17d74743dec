package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

// KeyValueRepository implements domain.KeyValueRepository using
// SQLite.
type KeyValueRepository struct {
	db *sql.DB
}

// NewKeyValueRepository creates a new SQLite-backed
// KeyValueRepository.
func NewKeyValueRepository(db *DB) *KeyValueRepository {
	return &KeyValueRepository{db: db.SqlDB}
}

func (r *KeyValueRepository) Set(ctx context.Context, userID int64, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_store (user_id, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

func (r *KeyValueRepository) Get(ctx context.Context, userID int64, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM kv_store WHERE user_id = ? AND key = ?", userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get key %q: %w", key, err)
	}
	return value, nil
}

func (r *KeyValueRepository) Delete(ctx context.Context, userID int64, key string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM kv_store WHERE user_id = ? AND key = ?", userID, key)
	if err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}
