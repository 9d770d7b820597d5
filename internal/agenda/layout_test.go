package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayboard/internal/model"
)

func timedEvent(id, start, end string) model.Event {
	return model.Event{ID: id, Name: id, StartDate: "2024-01-05", StartTime: start, EndTime: end}
}

func layoutByID(items []LayoutItem) map[string]LayoutItem {
	out := make(map[string]LayoutItem, len(items))
	for _, li := range items {
		out[li.Event.ID] = li
	}
	return out
}

func TestLayoutThreeMutuallyOverlapping(t *testing.T) {
	events := []model.Event{
		timedEvent("a", "00:00", "01:00"), // [0, 60)
		timedEvent("b", "00:30", "01:30"), // [30, 90)
		timedEvent("c", "00:45", "01:15"), // [45, 75)
	}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 3)

	byID := layoutByID(items)
	assert.Equal(t, 0, byID["a"].Column)
	assert.Equal(t, 1, byID["b"].Column)
	assert.Equal(t, 2, byID["c"].Column)
	for id, li := range byID {
		assert.Equal(t, 3, li.Columns, "event %s shares the cluster column count", id)
		assert.InDelta(t, 33.3, li.WidthPercent(), 0.05)
	}
}

func TestLayoutFourthOverlapCollapsesIntoLastColumn(t *testing.T) {
	events := []model.Event{
		timedEvent("a", "00:00", "01:00"),
		timedEvent("b", "00:10", "01:00"),
		timedEvent("c", "00:20", "01:00"),
		timedEvent("d", "00:30", "01:00"),
	}

	items := TimedLayout(events, "2024-01-05")
	byID := layoutByID(items)

	assert.Equal(t, 2, byID["d"].Column, "overflow stacks into the last column")
	for _, li := range items {
		assert.Equal(t, 3, li.Columns, "no fourth column is ever created")
	}
}

func TestLayoutColumnReuse(t *testing.T) {
	events := []model.Event{
		timedEvent("a", "09:00", "10:00"),
		timedEvent("b", "09:30", "10:30"),
		timedEvent("c", "10:00", "11:00"), // a has ended: reuse column 0
	}

	items := TimedLayout(events, "2024-01-05")
	byID := layoutByID(items)

	assert.Equal(t, 0, byID["c"].Column)
	assert.Equal(t, 2, byID["c"].Columns, "cluster used two columns total")
}

func TestLayoutDisjointEventsFormSeparateClusters(t *testing.T) {
	events := []model.Event{
		timedEvent("a", "09:00", "10:00"),
		timedEvent("b", "14:00", "15:00"),
	}

	items := TimedLayout(events, "2024-01-05")
	for _, li := range items {
		assert.Equal(t, 0, li.Column)
		assert.Equal(t, 1, li.Columns)
		assert.InDelta(t, 100.0, li.WidthPercent(), 0.001)
	}
}

func TestLayoutMinimumDuration(t *testing.T) {
	events := []model.Event{timedEvent("a", "10:00", "10:00")}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, 600, items[0].StartMinutes)
	assert.Equal(t, 615, items[0].EndMinutes, "zero-length spans stretch to the minimum slot")
}

func TestLayoutMissingEndTimeDefaultsToAnHour(t *testing.T) {
	events := []model.Event{timedEvent("a", "10:00", "")}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, 660, items[0].EndMinutes)
}

func TestLayoutEndOfDayCeiling(t *testing.T) {
	events := []model.Event{timedEvent("a", "23:50", "")}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, 1430, items[0].StartMinutes)
	assert.Equal(t, model.MinutesPerDay, items[0].EndMinutes, "ceiling wins over defaults")
}

func TestLayoutEndTimeAtDayBoundary(t *testing.T) {
	events := []model.Event{timedEvent("a", "22:00", "24:00")}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, 1320, items[0].StartMinutes)
	assert.Equal(t, model.MinutesPerDay, items[0].EndMinutes, "a resized span keeps its midnight end")
}

func TestLayoutSpanningEventFillsDay(t *testing.T) {
	events := []model.Event{{
		ID: "trip", Name: "trip",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-10",
	}}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].StartMinutes)
	assert.Equal(t, model.MinutesPerDay, items[0].EndMinutes)
}

func TestLayoutSkipsAllDayEvents(t *testing.T) {
	events := []model.Event{
		{ID: "holiday", Name: "holiday", StartDate: "2024-01-05", IsAllDay: true},
		timedEvent("a", "09:00", "10:00"),
	}

	items := TimedLayout(events, "2024-01-05")
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Event.ID)
}

func TestLayoutGeometry(t *testing.T) {
	events := []model.Event{
		timedEvent("a", "09:00", "10:00"),
		timedEvent("b", "09:00", "10:00"),
	}

	items := TimedLayout(events, "2024-01-05")
	byID := layoutByID(items)

	assert.InDelta(t, 0.0, byID["a"].LeftPercent(), 0.001)
	assert.InDelta(t, 50.0, byID["a"].WidthPercent(), 0.001)
	assert.InDelta(t, 50.0, byID["b"].LeftPercent(), 0.001)
}
