package agenda

import (
	"cmp"
	"slices"

	"dayboard/internal/model"
)

const (
	// minSlotMinutes is the smallest rendered duration; shorter events are
	// extended so they stay clickable on the timeline.
	minSlotMinutes = 15

	// maxColumns caps visual density. A cluster needing more concurrent
	// slots overflows into the last column rather than shrinking further.
	maxColumns = 3

	defaultDurationMinutes = 60
)

// LayoutItem positions one timed event on the day timeline: a minute
// span plus a column assignment inside its overlap cluster. Recomputed
// from scratch whenever the event set or date changes; never persisted.
type LayoutItem struct {
	Event model.Event

	StartMinutes int
	EndMinutes   int

	// Column is this event's slot index; Columns is the cluster's used
	// column count (shared by every event of the cluster, so widths agree).
	Column  int
	Columns int
}

// WidthPercent is the rendered width of this item in percent of the
// timeline width.
func (li LayoutItem) WidthPercent() float64 {
	return 100 / float64(li.Columns)
}

// LeftPercent is the rendered horizontal offset in percent.
func (li LayoutItem) LeftPercent() float64 {
	return float64(li.Column) * li.WidthPercent()
}

// TimedLayout lays out the non-all-day events of one date. Events are
// converted to clamped minute spans, grouped into clusters of mutually or
// transitively overlapping spans, and packed greedily into up to three
// columns with column reuse.
//
// A multi-day event spanning the viewed date without explicit times on
// that day occupies the full day (0..1440).
func TimedLayout(events []model.Event, date string) []LayoutItem {
	items := make([]LayoutItem, 0, len(events))
	for _, ev := range events {
		if ev.IsAllDay {
			continue
		}
		start, end := minuteSpan(ev, date)
		items = append(items, LayoutItem{Event: ev, StartMinutes: start, EndMinutes: end})
	}

	slices.SortStableFunc(items, func(a, b LayoutItem) int {
		if c := cmp.Compare(a.StartMinutes, b.StartMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.EndMinutes, b.EndMinutes)
	})

	// Sweep left to right: an event joins the running cluster while its
	// start precedes the cluster's max end, otherwise the cluster closes
	// and a new one opens.
	clusterStart := 0
	maxEnd := -1
	for i := range items {
		if maxEnd >= 0 && items[i].StartMinutes >= maxEnd {
			packCluster(items[clusterStart:i])
			clusterStart = i
			maxEnd = -1
		}
		if items[i].EndMinutes > maxEnd {
			maxEnd = items[i].EndMinutes
		}
	}
	if clusterStart < len(items) {
		packCluster(items[clusterStart:])
	}

	return items
}

// minuteSpan converts an event to its [start, end) minute range on the
// given date, applying the defaults and clamps: missing end time means
// start+60, spans reaching past the date's bounds clamp to them, and
// every event keeps at least the minimum slot (the end-of-day ceiling
// wins over the minimum at the day boundary).
func minuteSpan(ev model.Event, date string) (int, int) {
	start := 0
	if ev.StartDate >= date {
		start = startMinutesOrZero(ev)
	}

	var end int
	switch {
	case ev.EndDateOrStart() > date:
		end = model.MinutesPerDay
	case ev.EndTime != "":
		m, err := model.ParseClock(ev.EndTime)
		if err != nil {
			m = start + defaultDurationMinutes
		}
		end = m
	default:
		end = start + defaultDurationMinutes
	}

	if start < 0 {
		start = 0
	}
	if start > model.MinutesPerDay {
		start = model.MinutesPerDay
	}
	if end < start+minSlotMinutes {
		end = start + minSlotMinutes
	}
	if end > model.MinutesPerDay {
		end = model.MinutesPerDay
	}
	return start, end
}

// packCluster assigns columns within one overlap cluster: each event
// takes the first column whose previous occupant already ended, else
// opens a new column up to the cap; past the cap it stacks into the last
// column. Every member then shares the cluster's used column count.
func packCluster(cluster []LayoutItem) {
	colEnds := make([]int, 0, maxColumns)

	for i := range cluster {
		it := &cluster[i]
		placed := false
		for ci := range colEnds {
			if colEnds[ci] <= it.StartMinutes {
				it.Column = ci
				colEnds[ci] = it.EndMinutes
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(colEnds) < maxColumns {
			it.Column = len(colEnds)
			colEnds = append(colEnds, it.EndMinutes)
			continue
		}
		last := maxColumns - 1
		it.Column = last
		if it.EndMinutes > colEnds[last] {
			colEnds[last] = it.EndMinutes
		}
	}

	used := len(colEnds)
	for i := range cluster {
		cluster[i].Columns = used
	}
}
