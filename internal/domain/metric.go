package domain

import (
	"context"
	"time"
)

// MetricSample is one health reading synced from a client device
// (step counts, distance, calories, heart rate).
type MetricSample struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

const (
	MetricSteps     = "steps"
	MetricDistance  = "distance"
	MetricCalories  = "calories"
	MetricHeartRate = "heart_rate"
)

// DailyMetricSummary aggregates a user's samples for one date.
// Steps, distance and calories are summed; heart rate is averaged.
type DailyMetricSummary struct {
	Date         string  `json:"date"`
	Steps        int     `json:"steps"`
	DistanceKm   float64 `json:"distance_km"`
	Calories     int     `json:"calories"`
	AvgHeartRate float64 `json:"avg_heart_rate"`
}

type MetricRepository interface {
	Insert(ctx context.Context, sample *MetricSample) error
	SummarizeDay(ctx context.Context, userID int64, from, to time.Time) (*DailyMetricSummary, error)
}
