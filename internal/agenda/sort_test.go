package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayboard/internal/model"
)

func taskEntry(task *model.Task) model.AgendaEntry {
	return model.AgendaEntry{Kind: model.KindTask, Task: task}
}

func habitEntry(habit *model.Habit) model.AgendaEntry {
	return model.AgendaEntry{Kind: model.KindHabit, Habit: habit}
}

func TestSortIncompleteBeforeComplete(t *testing.T) {
	done := &model.Task{ID: "t1", Name: "aaa", CompletionHistory: model.NewDateSet("2024-01-05")}
	open := &model.Task{ID: "t2", Name: "zzz"}

	entries := []model.AgendaEntry{taskEntry(done), taskEntry(open)}
	sortEntries(entries, "2024-01-05")

	assert.Equal(t, "t2", entries[0].ID(), "incomplete sorts first regardless of name")
}

func TestSortPriorityAscending(t *testing.T) {
	low := &model.Task{ID: "t1", Name: "aaa", Priority: intptr(10)}
	high := &model.Task{ID: "t2", Name: "zzz", Priority: intptr(5)}

	entries := []model.AgendaEntry{taskEntry(low), taskEntry(high)}
	sortEntries(entries, "2024-01-05")

	assert.Equal(t, "t2", entries[0].ID(), "priority 5 beats priority 10 regardless of name")
}

func TestSortMissingPriorityIsLowest(t *testing.T) {
	unset := &model.Task{ID: "t1", Name: "aaa"}
	set := &model.Task{ID: "t2", Name: "zzz", Priority: intptr(50)}

	entries := []model.AgendaEntry{taskEntry(unset), taskEntry(set)}
	sortEntries(entries, "2024-01-05")

	assert.Equal(t, "t2", entries[0].ID())
}

func TestSortDueTimePrecedence(t *testing.T) {
	later := &model.Task{ID: "t1", Name: "aaa", DueTime: "14:00"}
	earlier := &model.Task{ID: "t2", Name: "zzz", DueTime: "09:00"}
	timeless := &model.Task{ID: "t3", Name: "aaa"}

	entries := []model.AgendaEntry{taskEntry(later), taskEntry(timeless), taskEntry(earlier)}
	sortEntries(entries, "2024-01-05")

	assert.Equal(t, []string{"t2", "t1", "t3"}, entryIDs(entries),
		"earlier time first, timed before timeless")
}

func TestSortNameTieBreak(t *testing.T) {
	b := &model.Task{ID: "t1", Name: "bravo", Priority: intptr(3)}
	a := &model.Task{ID: "t2", Name: "alpha", Priority: intptr(3)}
	habit := &model.Habit{ID: "h1", Name: "Alpha", Type: model.HabitDailyCheckOff}

	entries := []model.AgendaEntry{taskEntry(b), taskEntry(a), habitEntry(habit)}
	sortEntries(entries, "2024-01-05")

	// Case-sensitive: "Alpha" < "alpha" < "bravo", but the habit carries
	// no priority so it sorts behind both priority-3 tasks.
	assert.Equal(t, []string{"t2", "t1", "h1"}, entryIDs(entries))
}

func TestSortStability(t *testing.T) {
	t1 := &model.Task{ID: "t1", Name: "same"}
	t2 := &model.Task{ID: "t2", Name: "same"}
	t3 := &model.Task{ID: "t3", Name: "same"}

	entries := []model.AgendaEntry{taskEntry(t1), taskEntry(t2), taskEntry(t3)}
	sortEntries(entries, "2024-01-05")

	assert.Equal(t, []string{"t1", "t2", "t3"}, entryIDs(entries),
		"fully tied items keep input order")
}

func TestSortEventsNonToday(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Name: "late", StartDate: "2024-01-05", StartTime: "15:00"},
		{ID: "e2", Name: "holiday", StartDate: "2024-01-05", IsAllDay: true},
		{ID: "e3", Name: "early", StartDate: "2024-01-05", StartTime: "08:00"},
		{ID: "e4", Name: "no time", StartDate: "2024-01-05"},
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) // not the viewed date
	got := SortEvents(events, "2024-01-05", now)

	ids := eventIDs(got)
	assert.Equal(t, []string{"e2", "e4", "e3", "e1"}, ids,
		"all-day first, then timed ascending with missing time as 00:00")
}

func TestSortEventsTodayGroupsByStatus(t *testing.T) {
	events := []model.Event{
		{ID: "done", StartDate: "2024-01-05", StartTime: "08:00", EndTime: "09:00"},
		{ID: "soon", StartDate: "2024-01-05", StartTime: "14:00", EndTime: "15:00"},
		{ID: "later", StartDate: "2024-01-05", StartTime: "16:00", EndTime: "17:00"},
		{ID: "now", StartDate: "2024-01-05", StartTime: "11:30", EndTime: "12:30"},
	}

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	got := SortEvents(events, "2024-01-05", now)

	assert.Equal(t, []string{"now", "soon", "later", "done"}, eventIDs(got),
		"live, then upcoming by soonest start, then done")
}

func TestSortEventsDoesNotMutateInput(t *testing.T) {
	events := []model.Event{
		{ID: "b", StartDate: "2024-01-05", StartTime: "15:00"},
		{ID: "a", StartDate: "2024-01-05", StartTime: "08:00"},
	}

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = SortEvents(events, "2024-01-05", now)

	require.Equal(t, "b", events[0].ID, "input order untouched")
}

func eventIDs(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}
