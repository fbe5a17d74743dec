package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron"

	"github.com/okonek/traintrack/internal/domain"
)

// ReminderService periodically sweeps stored schedules and broadcasts
// a "schedule:reminder" event for every session starting within the
// lookahead window.
type ReminderService struct {
	schedules domain.ScheduleRepository
	publisher Publisher
	log       *slog.Logger
	cron      *cron.Cron
	lookahead time.Duration
	now       func() time.Time
}

// SessionReminder is the payload broadcast for an upcoming session.
type SessionReminder struct {
	ScheduleID  int64  `json:"schedule_id"`
	UserID      *int64 `json:"user_id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
}

// NewReminderService creates a ReminderService sweeping on the given
// cron spec (e.g. "@every 10m") with a one-hour lookahead.
func NewReminderService(schedules domain.ScheduleRepository, publisher Publisher, logger *slog.Logger) *ReminderService {
	return NewReminderServiceAt(schedules, publisher, logger, time.Now)
}

// NewReminderServiceAt is NewReminderService with an injectable clock.
func NewReminderServiceAt(schedules domain.ScheduleRepository, publisher Publisher, logger *slog.Logger, now func() time.Time) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		schedules: schedules,
		publisher: publisher,
		log:       logger,
		lookahead: time.Hour,
		now:       now,
	}
}

// Start schedules the periodic sweep. It returns after registering the
// cron entry; sweeps run on the cron goroutine.
func (s *ReminderService) Start(spec string) error {
	c := cron.New()
	if err := c.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.log.Info("reminder sweep scheduled", "spec", spec)
	return nil
}

// Stop halts the periodic sweep.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep broadcasts reminders for sessions starting within the
// lookahead window. It returns the number of reminders sent.
func (s *ReminderService) Sweep(ctx context.Context) int {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		s.log.Error("reminder sweep: list schedules", "error", err)
		return 0
	}

	from := s.now().UTC()
	to := from.Add(s.lookahead)
	sent := 0

	for _, schedule := range schedules {
		for _, day := range schedule.Days {
			for _, sess := range day.Sessions {
				start, err := time.Parse(domain.TimestampLayout, sess.StartTime)
				if err != nil {
					continue
				}
				if start.Before(from) || start.After(to) {
					continue
				}
				s.publisher.Broadcast("schedule", "reminder", SessionReminder{
					ScheduleID:  schedule.ID,
					UserID:      schedule.UserID,
					Title:       schedule.Title,
					Date:        day.Date,
					Description: sess.Description,
					StartTime:   sess.StartTime,
				})
				sent++
			}
		}
	}

	if sent > 0 {
		s.log.Info("reminder sweep completed", "sent", sent)
	}
	return sent
}
