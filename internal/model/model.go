package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire form for calendar dates throughout the engine.
const DateLayout = "2006-01-02"

// ClockLayout is the wire form for times of day ("HH:MM", 24-hour).
const ClockLayout = "15:04"

// MinutesPerDay bounds time-of-day arithmetic for timeline layout and drag.
const MinutesPerDay = 1440

// ParseDate parses a YYYY-MM-DD string into a midnight UTC time.Time.
// Dates come from the host application's own data model, so a malformed
// value is a programming error and is reported, never guessed around.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("model: empty date")
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t's calendar date in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
// "24:00" is accepted as the end-of-day boundary (1440), matching what
// FormatClock emits for it. The empty string is an error here; callers
// decide what a missing time means (00:00 for sorting, +60min default
// ends, and so on).
func ParseClock(s string) (int, error) {
	if s == "" {
		return 0, errors.New("model: empty clock value")
	}
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("model: invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes-since-midnight as "HH:MM". The value 1440
// (end of day) renders as "24:00" so a committed drag to the day boundary
// survives a round trip.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > MinutesPerDay {
		minutes = MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// RecurrenceType selects the repeat pattern of a RecurrenceRule.
type RecurrenceType string

const (
	RecurDaily    RecurrenceType = "daily"
	RecurWeekly   RecurrenceType = "weekly"
	RecurInterval RecurrenceType = "interval"
)

// RecurrenceRule describes a repeating schedule. The rule never fires
// before StartDate.
type RecurrenceRule struct {
	Type RecurrenceType `yaml:"type" json:"type"`

	// StartDate is the first calendar date the rule may fire on (YYYY-MM-DD).
	StartDate string `yaml:"start_date" json:"start_date"`

	// DaysOfWeek holds weekday tokens ("Sun".."Sat"); meaningful only for
	// weekly rules. An empty set means the weekly rule never fires.
	DaysOfWeek []string `yaml:"days_of_week,omitempty" json:"days_of_week,omitempty"`

	// Interval is the number of days between firings for interval rules.
	// Zero means unset and defaults to 1. Negative values are invalid.
	Interval int `yaml:"interval,omitempty" json:"interval,omitempty"`
}

// Subtask is one entry of a checklist task or habit.
type Subtask struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`

	// CompletedAt is the YYYY-MM-DD date the subtask was checked off, or
	// empty if it is open. Habit subtasks reset daily: they only count as
	// complete when CompletedAt equals the date being viewed.
	CompletedAt string `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Task is a checklist: a completable item with optional due date/time,
// priority and subtasks. A task with zero subtasks behaves as a single
// atomic completable item.
type Task struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	ProjectID string `yaml:"project_id,omitempty" json:"project_id,omitempty"`

	Recurrence *RecurrenceRule `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`

	// DueDate is only consulted when Recurrence is nil.
	DueDate string `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	DueTime string `yaml:"due_time,omitempty" json:"due_time,omitempty"`

	// Priority sorts ascending; nil is treated as 99 (lowest).
	Priority *int `yaml:"priority,omitempty" json:"priority,omitempty"`

	Subtasks []Subtask `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`

	CompletionHistory DateSet `yaml:"completion_history,omitempty" json:"completion_history,omitempty"`
}

// HabitType distinguishes a single daily check-off habit from one backed
// by a checklist of subtasks.
type HabitType string

const (
	HabitDailyCheckOff HabitType = "daily_check_off"
	HabitChecklist     HabitType = "checklist"
)

// Habit is a recurring practice. Unlike tasks, habit recurrence is
// mandatory: a habit with a zero-value rule is never due.
type Habit struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	ProjectID string `yaml:"project_id,omitempty" json:"project_id,omitempty"`

	Type HabitType `yaml:"type" json:"type"`

	Recurrence RecurrenceRule `yaml:"recurrence" json:"recurrence"`

	// Tasks are the habit's subtasks for checklist habits.
	Tasks []Subtask `yaml:"tasks,omitempty" json:"tasks,omitempty"`

	CompletionHistory DateSet `yaml:"completion_history,omitempty" json:"completion_history,omitempty"`
}

// Event is a calendar entry occupying a date span and optionally a time
// span within each day.
type Event struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	ProjectID string `yaml:"project_id,omitempty" json:"project_id,omitempty"`

	StartDate string `yaml:"start_date" json:"start_date"`
	// EndDate defaults to StartDate when empty.
	EndDate string `yaml:"end_date,omitempty" json:"end_date,omitempty"`

	// StartTime/EndTime are "HH:MM" or empty. A missing EndTime is treated
	// as one hour after StartTime for timeline layout.
	StartTime string `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string `yaml:"end_time,omitempty" json:"end_time,omitempty"`

	IsAllDay bool `yaml:"all_day,omitempty" json:"all_day,omitempty"`

	// SourceID is set for events imported from an external ICS feed.
	SourceID string `yaml:"source_id,omitempty" json:"source_id,omitempty"`
}

// EndDateOrStart returns EndDate, falling back to StartDate.
func (e Event) EndDateOrStart() string {
	if e.EndDate != "" {
		return e.EndDate
	}
	return e.StartDate
}

// EntryKind tags an AgendaEntry for downstream dispatch.
type EntryKind string

const (
	KindTask  EntryKind = "task"
	KindHabit EntryKind = "habit"
)

// AgendaEntry is one row of the composed daily agenda: a read-only view
// onto the underlying task or habit. Exactly one of Task/Habit is set,
// matching Kind.
type AgendaEntry struct {
	Kind  EntryKind
	Task  *Task
	Habit *Habit
}

// Name returns the display name of the wrapped item.
func (e AgendaEntry) Name() string {
	switch e.Kind {
	case KindTask:
		return e.Task.Name
	case KindHabit:
		return e.Habit.Name
	}
	return ""
}

// ID returns the identity of the wrapped item.
func (e AgendaEntry) ID() string {
	switch e.Kind {
	case KindTask:
		return e.Task.ID
	case KindHabit:
		return e.Habit.ID
	}
	return ""
}
