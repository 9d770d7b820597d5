// Package recur decides whether a recurring rule fires on a given
// calendar date, plus the due-date fallback rule for non-recurring tasks.
package recur

import (
	"fmt"
	"math"
	"strings"
	"time"

	"dayboard/internal/model"
)

// IsDueOn reports whether rule fires on date (YYYY-MM-DD).
//
// A rule never fires before its start date. Unrecognized rule types are
// fail-closed: the item is simply never due, so a newer host application
// adding rule kinds cannot crash the agenda. Malformed dates and negative
// intervals, on the other hand, are programming errors and come back as
// errors.
func IsDueOn(rule *model.RecurrenceRule, date string) (bool, error) {
	if rule == nil {
		return false, nil
	}

	day, err := model.ParseDate(date)
	if err != nil {
		return false, err
	}
	start, err := model.ParseDate(rule.StartDate)
	if err != nil {
		return false, fmt.Errorf("recur: rule start date: %w", err)
	}

	if day.Before(start) {
		return false, nil
	}

	switch rule.Type {
	case model.RecurDaily:
		return true, nil

	case model.RecurWeekly:
		if len(rule.DaysOfWeek) == 0 {
			// No implicit daily fallback for weekly rules.
			return false, nil
		}
		return weekdayMatches(day.Weekday(), rule.DaysOfWeek), nil

	case model.RecurInterval:
		interval := rule.Interval
		switch {
		case interval == 0:
			interval = 1
		case interval < 0:
			return false, fmt.Errorf("recur: interval must be positive, got %d", interval)
		}
		elapsed := int(math.Ceil(math.Abs(day.Sub(start).Hours() / 24)))
		return elapsed%interval == 0, nil

	default:
		return false, nil
	}
}

// IsTaskDueOn reports whether task appears on date's agenda.
//
// Recurring tasks delegate to their rule. A non-recurring task with no
// due date is always due; one with a due date stays due from that date
// onward until completed (overdue tasks keep reappearing rather than
// vanishing after their day — deliberate host policy, not a one-day
// window).
func IsTaskDueOn(task *model.Task, date string) (bool, error) {
	if task.Recurrence != nil {
		return IsDueOn(task.Recurrence, date)
	}

	if task.DueDate == "" {
		return true, nil
	}

	day, err := model.ParseDate(date)
	if err != nil {
		return false, err
	}
	due, err := model.ParseDate(task.DueDate)
	if err != nil {
		return false, fmt.Errorf("recur: task %s due date: %w", task.ID, err)
	}
	return !due.After(day), nil
}

// weekdayMatches checks wd against a set of weekday tokens. Tokens are
// matched on their first three letters case-insensitively, so "Mon",
// "mon" and "Monday" all select time.Monday.
func weekdayMatches(wd time.Weekday, tokens []string) bool {
	want := wd.String()[:3]
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if len(tok) < 3 {
			continue
		}
		if strings.EqualFold(tok[:3], want) {
			return true
		}
	}
	return false
}
