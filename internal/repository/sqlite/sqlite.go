package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/okonek/traintrack/internal/repository/sqlite/migrations"
)

// DB wraps a SQLite database handle and hands out the repository
// implementations bound to it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for
// use: WAL mode, foreign key enforcement and a single-connection pool.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()

	// WAL improves concurrent read performance.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns the user repository.
func (d *DB) Users() *UserRepository { return NewUserRepository(d) }

// Schedules returns the schedule repository.
func (d *DB) Schedules() *ScheduleRepository { return NewScheduleRepository(d) }

// Messages returns the chat message repository.
func (d *DB) Messages() *MessageRepository { return NewMessageRepository(d) }

// Posts returns the community post repository.
func (d *DB) Posts() *PostRepository { return NewPostRepository(d) }

// Metrics returns the health metric repository.
func (d *DB) Metrics() *MetricRepository { return NewMetricRepository(d) }

// KV returns the per-user key-value repository.
func (d *DB) KV() *KeyValueRepository { return NewKeyValueRepository(d) }
