package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

// MetricsService ingests health samples synced from client devices and
// serves per-day summaries.
type MetricsService struct {
	metrics domain.MetricRepository
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(metrics domain.MetricRepository) *MetricsService {
	return &MetricsService{metrics: metrics}
}

var validMetricKinds = map[string]bool{
	domain.MetricSteps:     true,
	domain.MetricDistance:  true,
	domain.MetricCalories:  true,
	domain.MetricHeartRate: true,
}

// Ingest stores a batch of samples for the user. The whole batch is
// rejected when any sample carries an unknown kind.
func (s *MetricsService) Ingest(ctx context.Context, userID int64, samples []domain.MetricSample) error {
	for _, sample := range samples {
		if !validMetricKinds[sample.Kind] {
			return fmt.Errorf("%w: unknown metric kind %q", domain.ErrInvalidInput, sample.Kind)
		}
	}
	for i := range samples {
		samples[i].UserID = userID
		if samples[i].RecordedAt.IsZero() {
			samples[i].RecordedAt = time.Now().UTC()
		}
		if err := s.metrics.Insert(ctx, &samples[i]); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	return nil
}

// DailySummary aggregates the user's samples for one calendar date
// (UTC). A date with no samples yields a zero summary, not an error.
func (s *MetricsService) DailySummary(ctx context.Context, userID int64, date string) (*domain.DailyMetricSummary, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, date)
	}

	summary, err := s.metrics.SummarizeDay(ctx, userID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("summarize day: %w", err)
	}
	summary.Date = date
	return summary, nil
}
