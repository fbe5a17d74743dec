package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

// MetricRepository implements domain.MetricRepository using SQLite.
type MetricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a new SQLite-backed MetricRepository.
func NewMetricRepository(db *DB) *MetricRepository {
	return &MetricRepository{db: db.SqlDB}
}

func (r *MetricRepository) Insert(ctx context.Context, sample *domain.MetricSample) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO metric_samples (user_id, kind, value, recorded_at)
		 VALUES (?, ?, ?, ?)`,
		sample.UserID, sample.Kind, sample.Value, sample.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	sample.ID = id
	return nil
}

func (r *MetricRepository) SummarizeDay(ctx context.Context, userID int64, from, to time.Time) (*domain.DailyMetricSummary, error) {
	summary := &domain.DailyMetricSummary{}
	var steps, distance, calories, heartRate sql.NullFloat64

	err := r.db.QueryRowContext(ctx,
		`SELECT
		   SUM(CASE WHEN kind = 'steps' THEN value END),
		   SUM(CASE WHEN kind = 'distance' THEN value END),
		   SUM(CASE WHEN kind = 'calories' THEN value END),
		   AVG(CASE WHEN kind = 'heart_rate' THEN value END)
		 FROM metric_samples
		 WHERE user_id = ? AND recorded_at >= ? AND recorded_at < ?`,
		userID, from, to,
	).Scan(&steps, &distance, &calories, &heartRate)
	if err != nil {
		return nil, fmt.Errorf("summarize samples: %w", err)
	}

	summary.Steps = int(steps.Float64)
	summary.DistanceKm = distance.Float64
	summary.Calories = int(calories.Float64)
	summary.AvgHeartRate = heartRate.Float64
	return summary, nil
}
