package service

import (
	"sort"
	"strings"
	"time"

	"github.com/okonek/traintrack/internal/domain"
)

const defaultSessionDescription = "Session"

// SessionDefaults seeds a newly created training session.
type SessionDefaults struct {
	Description string
	StartClock  string // "HH:MM"
	EndClock    string // "HH:MM"
	Steps       int
	DistanceKm  float64
	Calories    int
}

// ReconcilerConfig carries the product defaults for seeded sessions.
// The single session of a newly selected day uses Morning; sessions
// appended to an existing day use Afternoon.
type ReconcilerConfig struct {
	Morning   SessionDefaults
	Afternoon SessionDefaults
}

// DefaultReconcilerConfig holds the stock defaults shipped with the
// mobile clients.
var DefaultReconcilerConfig = ReconcilerConfig{
	Morning: SessionDefaults{
		Description: defaultSessionDescription,
		StartClock:  "06:00",
		EndClock:    "08:00",
		Steps:       5000,
		DistanceKm:  5,
		Calories:    300,
	},
	Afternoon: SessionDefaults{
		Description: defaultSessionDescription,
		StartClock:  "15:00",
		EndClock:    "17:00",
		Steps:       8000,
		DistanceKm:  8,
		Calories:    500,
	},
}

// Reconciler keeps a day-schedule list synchronized with an externally
// owned set of selected calendar dates and keeps every session's
// numeric fields well typed. Every mutation passes the result through
// ValidateAndFix and hands it to the change callback. None of the
// operations fail: malformed numeric input degrades to zero and
// structurally invalid mutations are silent no-ops.
type Reconciler struct {
	cfg      ReconcilerConfig
	onChange func([]domain.DailySchedule)
}

// NewReconciler creates a Reconciler. onChange may be nil; when set it
// receives the validated day list after every operation.
func NewReconciler(cfg ReconcilerConfig, onChange func([]domain.DailySchedule)) *Reconciler {
	return &Reconciler{cfg: cfg, onChange: onChange}
}

// Reconcile recomputes the day list from the selected-dates set. Dates
// are processed in ascending lexicographic order, which for ISO date
// strings is chronological order. Days already present in current keep
// their session data untouched; newly selected dates are seeded with a
// single default morning session; days no longer selected are dropped.
func (r *Reconciler) Reconcile(selected map[string]any, current []domain.DailySchedule) []domain.DailySchedule {
	existing := make(map[string]domain.DailySchedule, len(current))
	for _, day := range current {
		existing[day.Date] = day
	}

	dates := make([]string, 0, len(selected))
	for date := range selected {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	next := make([]domain.DailySchedule, 0, len(dates))
	for _, date := range dates {
		if day, ok := existing[date]; ok {
			next = append(next, day)
			continue
		}
		next = append(next, domain.DailySchedule{
			Date:     date,
			Sessions: []domain.TrainingSession{r.newSession(date, r.cfg.Morning)},
		})
	}
	return r.commit(next)
}

// AddSession appends a default afternoon session to the day at
// dayIndex. An out-of-range index leaves the list unchanged.
func (r *Reconciler) AddSession(days []domain.DailySchedule, dayIndex int) []domain.DailySchedule {
	if dayIndex < 0 || dayIndex >= len(days) {
		return days
	}
	day := &days[dayIndex]
	day.Sessions = append(day.Sessions, r.newSession(day.Date, r.cfg.Afternoon))
	return r.commit(days)
}

// RemoveSession removes the session at sessionIndex from the day at
// dayIndex. Removing the only remaining session of a day is a no-op:
// every day keeps at least one session.
func (r *Reconciler) RemoveSession(days []domain.DailySchedule, dayIndex, sessionIndex int) []domain.DailySchedule {
	if dayIndex < 0 || dayIndex >= len(days) {
		return days
	}
	day := &days[dayIndex]
	if sessionIndex < 0 || sessionIndex >= len(day.Sessions) {
		return days
	}
	if len(day.Sessions) <= 1 {
		return r.commit(days)
	}
	day.Sessions = append(day.Sessions[:sessionIndex], day.Sessions[sessionIndex+1:]...)
	return r.commit(days)
}

// UpdateSession sets one field of the session at (dayIndex,
// sessionIndex). Time fields are rebuilt from the owning day's date
// plus the "HH:MM" part of value, so the date component always tracks
// the day even when the caller supplies a stray date. Goal fields go
// through the numeric coercion used everywhere else.
func (r *Reconciler) UpdateSession(days []domain.DailySchedule, dayIndex, sessionIndex int, field string, value any) []domain.DailySchedule {
	if dayIndex < 0 || dayIndex >= len(days) {
		return days
	}
	day := &days[dayIndex]
	if sessionIndex < 0 || sessionIndex >= len(day.Sessions) {
		return days
	}
	sess := &day.Sessions[sessionIndex]

	switch field {
	case "start_time":
		sess.StartTime = EncodeDayTime(day.Date, clockPart(value))
	case "end_time":
		sess.EndTime = EncodeDayTime(day.Date, clockPart(value))
	case "goal_steps":
		sess.GoalSteps = domain.ParseIntField(value)
	case "goal_calories":
		sess.GoalCalories = domain.ParseIntField(value)
	case "goal_distance":
		sess.GoalDistance = domain.ParseFloatField(value)
	default:
		if s, ok := value.(string); ok && field == "description" {
			sess.Description = s
		}
	}
	return r.commit(days)
}

func (r *Reconciler) newSession(date string, d SessionDefaults) domain.TrainingSession {
	return domain.TrainingSession{
		Description:  d.Description,
		StartTime:    EncodeDayTime(date, d.StartClock),
		EndTime:      EncodeDayTime(date, d.EndClock),
		GoalSteps:    d.Steps,
		GoalDistance: d.DistanceKm,
		GoalCalories: d.Calories,
	}
}

func (r *Reconciler) commit(days []domain.DailySchedule) []domain.DailySchedule {
	days = ValidateAndFix(days)
	if r.onChange != nil {
		r.onChange(days)
	}
	return days
}

// ValidateAndFix normalizes every session in every day: blank
// descriptions become "Session" and goal fields are reasserted through
// the numeric coercion path. Applying it twice yields the same result
// as applying it once.
func ValidateAndFix(days []domain.DailySchedule) []domain.DailySchedule {
	for di := range days {
		sessions := days[di].Sessions
		for si := range sessions {
			s := &sessions[si]
			if strings.TrimSpace(s.Description) == "" {
				s.Description = defaultSessionDescription
			}
			s.GoalSteps = domain.ParseIntField(s.GoalSteps)
			s.GoalDistance = domain.ParseFloatField(s.GoalDistance)
			s.GoalCalories = domain.ParseIntField(s.GoalCalories)
		}
	}
	return days
}

// EncodeDayTime combines a day's date with an "HH:MM" clock into the
// canonical UTC timestamp, e.g. ("2025-01-10", "06:00") ->
// "2025-01-10T06:00:00.000Z".
func EncodeDayTime(date, clock string) string {
	return date + "T" + clock + ":00.000Z"
}

// ExtractTimeOfDay reads the zero-padded "HH:MM" clock from a
// canonical timestamp. It is the exact inverse of EncodeDayTime for
// every valid clock value; malformed timestamps read as "00:00".
func ExtractTimeOfDay(ts string) string {
	t, err := time.Parse(domain.TimestampLayout, ts)
	if err != nil {
		return "00:00"
	}
	return t.UTC().Format("15:04")
}

// clockPart pulls the "HH:MM" portion out of an update value, ignoring
// any date component the caller attached.
func clockPart(value any) string {
	raw, _ := value.(string)
	if i := strings.Index(raw, "T"); i >= 0 {
		raw = raw[i+1:]
	}
	if len(raw) > 5 {
		raw = raw[:5]
	}
	return raw
}
