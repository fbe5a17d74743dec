package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okonek/traintrack/internal/domain"
)

// Publisher pushes server-originated realtime events to connected
// clients. Satisfied by *realtime.Hub.
type Publisher interface {
	Broadcast(prefix, eventType string, data any)
}

// ScheduleService persists workout schedules and notifies connected
// clients about mutations on the "schedule" channel.
type ScheduleService struct {
	schedules domain.ScheduleRepository
	publisher Publisher
}

// NewScheduleService creates a ScheduleService. publisher may be nil.
func NewScheduleService(schedules domain.ScheduleRepository, publisher Publisher) *ScheduleService {
	return &ScheduleService{schedules: schedules, publisher: publisher}
}

// Create validates and stores a submitted schedule. The day list is
// run through ValidateAndFix so stored goal fields are always numeric.
func (s *ScheduleService) Create(ctx context.Context, schedule *domain.Schedule) error {
	if strings.TrimSpace(schedule.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	schedule.Days = ValidateAndFix(schedule.Days)

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	s.notify("created", schedule)
	return nil
}

// GetByID returns a schedule by ID.
func (s *ScheduleService) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

// ListByUser returns all schedules owned by a user.
func (s *ScheduleService) ListByUser(ctx context.Context, userID int64) ([]domain.Schedule, error) {
	return s.schedules.ListByUser(ctx, userID)
}

// Update replaces a schedule the user owns.
func (s *ScheduleService) Update(ctx context.Context, userID int64, schedule *domain.Schedule) error {
	existing, err := s.schedules.GetByID(ctx, schedule.ID)
	if err != nil {
		return fmt.Errorf("get schedule: %w", err)
	}
	if existing.UserID == nil || *existing.UserID != userID {
		return domain.ErrUnauthorized
	}
	if strings.TrimSpace(schedule.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	schedule.UserID = existing.UserID
	schedule.Days = ValidateAndFix(schedule.Days)

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	s.notify("updated", schedule)
	return nil
}

// Delete removes a schedule the user owns.
func (s *ScheduleService) Delete(ctx context.Context, userID, id int64) error {
	existing, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get schedule: %w", err)
	}
	if existing.UserID == nil || *existing.UserID != userID {
		return domain.ErrUnauthorized
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	s.notify("deleted", existing)
	return nil
}

func (s *ScheduleService) notify(eventType string, schedule *domain.Schedule) {
	if s.publisher != nil {
		s.publisher.Broadcast("schedule", eventType, schedule)
	}
}
