package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "dayboard/internal/log"
	"dayboard/internal/model"
)

const defaultMaxOccurrences = 5000

// Window controls recurrence expansion.
type Window struct {
	// Location is the timezone occurrences are converted into; nil means
	// time.Local.
	Location *time.Location

	// Start / End bound the inclusive expansion range.
	Start time.Time
	End   time.Time

	// MaxOccurrences caps per-event expansion as a safety net against
	// runaway rules. Zero means defaultMaxOccurrences.
	MaxOccurrences int
}

// Expand turns parsed feed events into concrete model.Events within the
// window: one-off VEVENTs pass through, RRULE events are expanded with
// EXDATE removal and RECURRENCE-ID overrides applied, and every result
// is normalized into the window's timezone as agenda-ready date and
// time-of-day strings.
func Expand(events []FeedEvent, win Window) ([]model.Event, error) {
	if win.End.Before(win.Start) {
		return nil, errors.New("ics: expansion window end before start")
	}
	if win.Location == nil {
		win.Location = time.Local
	}
	if win.MaxOccurrences <= 0 {
		win.MaxOccurrences = defaultMaxOccurrences
	}

	base := make([]FeedEvent, 0, len(events))
	overridesByUID := make(map[string][]FeedEvent)
	for _, fe := range events {
		if fe.IsOverride() {
			overridesByUID[fe.UID] = append(overridesByUID[fe.UID], fe)
			continue
		}
		base = append(base, fe)
	}

	out := make([]model.Event, 0, len(base))
	for _, fe := range base {
		occs, truncated := expandOne(fe, overridesByUID[fe.UID], win)
		if truncated {
			appLog.Warn("ics: occurrence cap hit", "uid", fe.UID, "cap", win.MaxOccurrences)
		}
		out = append(out, occs...)
	}
	return out, nil
}

func expandOne(fe FeedEvent, overrides []FeedEvent, win Window) ([]model.Event, bool) {
	if fe.RawRRule == "" {
		feEnd := fe.End
		if feEnd.IsZero() {
			feEnd = fe.Start
		}
		if feEnd.Before(win.Start) || fe.Start.After(win.End) {
			return nil, false
		}
		start, end, src := fe.Start, feEnd, fe
		if ov, ok := overrideFor(overrides, start); ok {
			start, end, src = ov.Start, ov.End, ov
		}
		return []model.Event{makeEvent(src, start, end, win.Location)}, false
	}

	rule, err := rrule.StrToRRule(fe.RawRRule)
	if err != nil {
		appLog.Error("ics: bad RRULE", err, "uid", fe.UID, "rrule", fe.RawRRule)
		return nil, false
	}
	rule.DTStart(fe.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range fe.ExDates {
		set.ExDate(ex.In(fe.Start.Location()))
	}

	starts := set.Between(win.Start.In(fe.Start.Location()), win.End.In(fe.Start.Location()), true)
	truncated := false
	if len(starts) > win.MaxOccurrences {
		starts = starts[:win.MaxOccurrences]
		truncated = true
	}

	duration := fe.End.Sub(fe.Start)
	out := make([]model.Event, 0, len(starts))
	for _, start := range starts {
		var end time.Time
		if fe.AllDay {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			start = day
			end = day.Add(24 * time.Hour)
		} else {
			end = start.Add(duration)
		}

		src := fe
		if ov, ok := overrideFor(overrides, start); ok {
			start, end, src = ov.Start, ov.End, ov
		}
		out = append(out, makeEvent(src, start, end, win.Location))
	}
	return out, truncated
}

// overrideFor matches an override whose RECURRENCE-ID equals the
// instance start.
func overrideFor(overrides []FeedEvent, start time.Time) (FeedEvent, bool) {
	for _, ov := range overrides {
		if ov.OverrideOf != nil && ov.OverrideOf.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return FeedEvent{}, false
}

// makeEvent converts one occurrence into the agenda's event shape,
// normalized into loc. All-day spans are exclusive at their end, so the
// inclusive end date backs off one nanosecond before formatting.
func makeEvent(fe FeedEvent, start, end time.Time, loc *time.Location) model.Event {
	start = start.In(loc)
	end = end.In(loc)

	ev := model.Event{
		ID:       fmt.Sprintf("%s@%s", fe.UID, start.Format(time.RFC3339)),
		Name:     fe.Summary,
		SourceID: fe.Source.ID,
		IsAllDay: fe.AllDay,
	}

	ev.StartDate = model.FormatDate(start)
	if fe.AllDay {
		last := end.Add(-time.Nanosecond)
		if last.Before(start) {
			last = start
		}
		ev.EndDate = model.FormatDate(last)
		return ev
	}

	ev.StartTime = start.Format(model.ClockLayout)
	if end.After(start) {
		ev.EndDate = model.FormatDate(end)
		ev.EndTime = end.Format(model.ClockLayout)
	}
	return ev
}
