// Package live layers wall-clock awareness onto the agenda: event
// live/upcoming/done status, countdown labels, the minute tick that
// keeps "today" fresh, and the drag state machine for interactively
// moving or resizing a timed event.
package live

import (
	"fmt"
	"math"
	"time"

	"dayboard/internal/model"
)

// Status classifies an event relative to the current moment.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusDone     Status = "done"
)

// countdownWindow bounds how far ahead a countdown label is shown.
const countdownWindow = 60 * time.Minute

// EventStatus computes ev's status at now. All-day events are live for
// the whole day they are shown on. For timed events the end falls back
// to the start when no end time is set, so a point-in-time event flips
// straight from upcoming to done once its moment passes.
//
// Event dates are validated upstream (store load, agenda composition);
// an unparseable date here degrades to live rather than guessing an
// ordering.
func EventStatus(ev model.Event, now time.Time) Status {
	if ev.IsAllDay {
		return StatusLive
	}

	start, err := combine(ev.StartDate, ev.StartTime, now.Location())
	if err != nil {
		return StatusLive
	}
	end := start
	if ev.EndTime != "" {
		if e, err := combine(ev.EndDateOrStart(), ev.EndTime, now.Location()); err == nil {
			end = e
		}
	}

	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusDone
	default:
		return StatusLive
	}
}

// EventCountdown returns the countdown label for ev, or "" when ev is
// not upcoming within the countdown window.
func EventCountdown(ev model.Event, now time.Time) string {
	if ev.IsAllDay || EventStatus(ev, now) != StatusUpcoming {
		return ""
	}
	start, err := combine(ev.StartDate, ev.StartTime, now.Location())
	if err != nil {
		return ""
	}
	return CountdownLabel(start, now)
}

// CountdownLabel formats the time remaining until start: "43m" under an
// hour, "1h" on the hour, "1h 5m" otherwise. Outside the window (or once
// start has passed) it returns "".
func CountdownLabel(start, now time.Time) string {
	remaining := start.Sub(now)
	if remaining <= 0 || remaining > countdownWindow {
		return ""
	}
	mins := int(math.Ceil(remaining.Minutes()))
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	h, m := mins/60, mins%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// IsToday reports whether date names the calendar date of now, in now's
// location.
func IsToday(date string, now time.Time) bool {
	return date == model.FormatDate(now)
}

// combine builds a wall-clock instant from a date string and an "HH:MM"
// time in loc. An empty or invalid time means midnight.
func combine(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes := 0
	if clock != "" {
		if m, err := model.ParseClock(clock); err == nil {
			minutes = m
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
