package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

// ScheduleRepository implements domain.ScheduleRepository using
// SQLite. Day schedules are stored as a JSON column: they are written
// and read as one unit and never queried field-by-field.
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new SQLite-backed ScheduleRepository.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db.SqlDB}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	daysJSON, err := marshalDays(schedule.Days)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO schedules (user_id, title, description, days_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullableID(schedule.UserID), schedule.Title, schedule.Description, daysJSON, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	schedule.ID = id
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, days_json, created_at, updated_at
		 FROM schedules WHERE id = ?`, id)

	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

func (r *ScheduleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Schedule, error) {
	return r.list(ctx,
		`SELECT id, user_id, title, description, days_json, created_at, updated_at
		 FROM schedules WHERE user_id = ? ORDER BY updated_at DESC`, userID)
}

func (r *ScheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	return r.list(ctx,
		`SELECT id, user_id, title, description, days_json, created_at, updated_at
		 FROM schedules ORDER BY id`)
}

func (r *ScheduleRepository) list(ctx context.Context, query string, args ...any) ([]domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	daysJSON, err := marshalDays(schedule.Days)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET title = ?, description = ?, days_json = ?, updated_at = ?
		 WHERE id = ?`,
		schedule.Title, schedule.Description, daysJSON, now, schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	schedule.UpdatedAt = now
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSchedule(scan func(...any) error) (*domain.Schedule, error) {
	schedule := &domain.Schedule{}
	var userID sql.NullInt64
	var daysJSON string

	if err := scan(&schedule.ID, &userID, &schedule.Title, &schedule.Description,
		&daysJSON, &schedule.CreatedAt, &schedule.UpdatedAt); err != nil {
		return nil, err
	}

	if userID.Valid {
		schedule.UserID = &userID.Int64
	}
	if err := json.Unmarshal([]byte(daysJSON), &schedule.Days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	return schedule, nil
}

func marshalDays(days []domain.DailySchedule) (string, error) {
	if days == nil {
		days = []domain.DailySchedule{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("encode days: %w", err)
	}
	return string(raw), nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
