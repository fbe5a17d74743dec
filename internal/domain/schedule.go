package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical wire format for session times: the
// owning day's date combined with a time of day, always UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout keys days within a schedule, e.g. "2025-01-10".
// Lexicographic order of date strings is chronological order.
const DateLayout = "2006-01-02"

// TrainingSession is one time-boxed workout slot within a day.
// Goal fields are always numeric, never text, no matter how the client
// control produced them.
type TrainingSession struct {
	Description  string  `json:"description"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	GoalSteps    int     `json:"goal_steps"`
	GoalDistance float64 `json:"goal_distance"`
	GoalCalories int     `json:"goal_calories"`
}

// UnmarshalJSON accepts goal fields as either JSON numbers or strings.
// Mobile clients driven by free-text inputs routinely submit "5000"
// where 5000 is meant; anything unparseable degrades to zero.
func (s *TrainingSession) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description  string `json:"description"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
		GoalSteps    any    `json:"goal_steps"`
		GoalDistance any    `json:"goal_distance"`
		GoalCalories any    `json:"goal_calories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Description = raw.Description
	s.StartTime = raw.StartTime
	s.EndTime = raw.EndTime
	s.GoalSteps = ParseIntField(raw.GoalSteps)
	s.GoalDistance = ParseFloatField(raw.GoalDistance)
	s.GoalCalories = ParseIntField(raw.GoalCalories)
	return nil
}

// ParseIntField coerces a loosely typed value to an int. Strings are
// parsed as integers, then as floats with the fraction truncated.
// Unparseable input yields 0 rather than an error.
func ParseIntField(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		return ParseIntField(n.String())
	case string:
		t := strings.TrimSpace(n)
		if i, err := strconv.Atoi(t); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// ParseFloatField coerces a loosely typed value to a float64, accepting
// a decimal comma. Unparseable input yields 0.
func ParseFloatField(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return ParseFloatField(n.String())
	case string:
		t := strings.Replace(strings.TrimSpace(n), ",", ".", 1)
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// DailySchedule is one calendar date plus its ordered training
// sessions. A day always holds at least one session.
type DailySchedule struct {
	Date     string            `json:"date"`
	Sessions []TrainingSession `json:"sessions"`
}

// Schedule is the full payload exchanged with clients on the
// schedule-creation and update endpoints.
type Schedule struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UserID      *int64          `json:"user_id"`
	Days        []DailySchedule `json:"days"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *Schedule) error
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	ListByUser(ctx context.Context, userID int64) ([]Schedule, error)
	List(ctx context.Context) ([]Schedule, error)
	Update(ctx context.Context, schedule *Schedule) error
	Delete(ctx context.Context, id int64) error
}
