package agenda

import (
	"cmp"
	"slices"
	"time"

	"dayboard/internal/live"
	"dayboard/internal/model"
)

const lowestPriority = 99

// sortEntries orders the task+habit list in place with the agenda's
// precedence chain: incomplete before complete, then priority ascending,
// then due time (timed tasks first, earlier first), then name. The sort
// is stable so equal items keep their input order across recomputations.
func sortEntries(entries []model.AgendaEntry, date string) {
	slices.SortStableFunc(entries, func(a, b model.AgendaEntry) int {
		if c := cmpBool(entryCompletedOn(a, date), entryCompletedOn(b, date)); c != 0 {
			return c
		}
		if c := cmp.Compare(entryPriority(a), entryPriority(b)); c != 0 {
			return c
		}
		if c := cmpDueTime(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Name(), b.Name())
	})
}

// cmpBool sorts false before true.
func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func entryPriority(e model.AgendaEntry) int {
	if e.Kind == model.KindTask && e.Task.Priority != nil {
		return *e.Task.Priority
	}
	return lowestPriority
}

// cmpDueTime applies the due-time step: an item with a time sorts before
// one without; two timed items compare ascending; two timeless items are
// tied here. Only tasks carry due times, and an unparseable value is
// treated as absent.
func cmpDueTime(a, b model.AgendaEntry) int {
	am, aok := entryDueMinutes(a)
	bm, bok := entryDueMinutes(b)
	switch {
	case aok && bok:
		return cmp.Compare(am, bm)
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

func entryDueMinutes(e model.AgendaEntry) (int, bool) {
	if e.Kind != model.KindTask || e.Task.DueTime == "" {
		return 0, false
	}
	m, err := model.ParseClock(e.Task.DueTime)
	if err != nil {
		return 0, false
	}
	return m, true
}

// SortEvents returns the day's events in display order without mutating
// the input.
//
// For a date other than today, all-day events come first, then timed
// events by start time ascending (a missing start time sorts as 00:00).
// For today, events group by live status (live, then upcoming, then done)
// with the upcoming group ordered by soonest start.
func SortEvents(events []model.Event, date string, now time.Time) []model.Event {
	out := slices.Clone(events)

	if date == model.FormatDate(now) {
		slices.SortStableFunc(out, func(a, b model.Event) int {
			sa, sb := statusRank(a, now), statusRank(b, now)
			if c := cmp.Compare(sa, sb); c != 0 {
				return c
			}
			if sa == rankUpcoming {
				return cmp.Compare(startMinutesOrZero(a), startMinutesOrZero(b))
			}
			return 0
		})
		return out
	}

	slices.SortStableFunc(out, func(a, b model.Event) int {
		if c := cmpBool(!a.IsAllDay, !b.IsAllDay); c != 0 {
			return c
		}
		if a.IsAllDay {
			return 0
		}
		return cmp.Compare(startMinutesOrZero(a), startMinutesOrZero(b))
	})
	return out
}

const (
	rankLive = iota
	rankUpcoming
	rankDone
)

func statusRank(ev model.Event, now time.Time) int {
	switch live.EventStatus(ev, now) {
	case live.StatusLive:
		return rankLive
	case live.StatusUpcoming:
		return rankUpcoming
	default:
		return rankDone
	}
}

func startMinutesOrZero(ev model.Event) int {
	if ev.StartTime == "" {
		return 0
	}
	m, err := model.ParseClock(ev.StartTime)
	if err != nil {
		return 0
	}
	return m
}
