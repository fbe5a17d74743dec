package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

const countdownKey = "countdown"

// CountdownState is the persisted countdown anchor. Remaining time is
// never stored; it is re-derived from the wall clock on every read,
// the same way clients rebuild their timers after a restart.
type CountdownState struct {
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// CountdownService stores one countdown per user in the key-value
// store.
type CountdownService struct {
	kv  domain.KeyValueRepository
	now func() time.Time
}

// NewCountdownService creates a CountdownService. now may be nil and
// defaults to time.Now; tests inject a fixed clock.
func NewCountdownService(kv domain.KeyValueRepository, now func() time.Time) *CountdownService {
	if now == nil {
		now = time.Now
	}
	return &CountdownService{kv: kv, now: now}
}

// Start anchors a new countdown of the given duration at the current
// time, replacing any previous one.
func (s *CountdownService) Start(ctx context.Context, userID int64, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", domain.ErrInvalidInput)
	}

	state := CountdownState{
		StartedAt:       s.now().UTC(),
		DurationSeconds: int(duration / time.Second),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal countdown state: %w", err)
	}
	if err := s.kv.Set(ctx, userID, countdownKey, string(raw)); err != nil {
		return fmt.Errorf("store countdown: %w", err)
	}
	return nil
}

// Remaining recomputes the time left on the user's countdown from the
// persisted anchor. An expired countdown reads as zero. Returns
// domain.ErrNotFound when no countdown is running.
func (s *CountdownService) Remaining(ctx context.Context, userID int64) (time.Duration, error) {
	raw, err := s.kv.Get(ctx, userID, countdownKey)
	if err != nil {
		return 0, err
	}

	var state CountdownState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return 0, fmt.Errorf("decode countdown state: %w", err)
	}

	elapsed := s.now().UTC().Sub(state.StartedAt)
	remaining := time.Duration(state.DurationSeconds)*time.Second - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Clear removes the user's countdown.
func (s *CountdownService) Clear(ctx context.Context, userID int64) error {
	return s.kv.Delete(ctx, userID, countdownKey)
}
