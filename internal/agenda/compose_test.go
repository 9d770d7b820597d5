package agenda

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayboard/internal/model"
)

func intptr(v int) *int { return &v }

func dailyRule(start string) *model.RecurrenceRule {
	return &model.RecurrenceRule{Type: model.RecurDaily, StartDate: start}
}

func TestComposeFiltersTasksByDueRule(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Name: "due earlier", DueDate: "2024-01-01"},
		{ID: "t2", Name: "due later", DueDate: "2024-02-01"},
		{ID: "t3", Name: "no due date"},
	}

	got, err := Compose(tasks, nil, nil, "2024-01-15", "")
	require.NoError(t, err)

	ids := entryIDs(got.Entries)
	assert.Contains(t, ids, "t1", "overdue task stays visible")
	assert.NotContains(t, ids, "t2", "not yet due")
	assert.Contains(t, ids, "t3", "dateless task always due")
}

func TestComposeCompletedAtomicTaskIsTerminal(t *testing.T) {
	tasks := []model.Task{{
		ID:                "t1",
		Name:              "one shot",
		DueDate:           "2024-01-01",
		CompletionHistory: model.NewDateSet("2024-01-03"),
	}}

	// Visible only on its completion date; gone everywhere else.
	got, err := Compose(tasks, nil, nil, "2024-01-03", "")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)

	for _, d := range []string{"2024-01-02", "2024-01-04", "2024-02-01"} {
		got, err := Compose(tasks, nil, nil, d, "")
		require.NoError(t, err)
		assert.Empty(t, got.Entries, "completed atomic task must not reappear on %s", d)
	}
}

func TestComposeRecurringTaskStaysListedWhenCompleted(t *testing.T) {
	tasks := []model.Task{{
		ID:                "t1",
		Name:              "water plants",
		Recurrence:        dailyRule("2024-01-01"),
		CompletionHistory: model.NewDateSet("2024-01-05"),
	}}

	got, err := Compose(tasks, nil, nil, "2024-01-05", "")
	require.NoError(t, err)
	require.Len(t, got.Entries, 1, "recurring task stays listed on its completion day")
	assert.True(t, TaskCompletedOn(got.Entries[0].Task, "2024-01-05"))
}

func TestComposeChecklistTaskStaysListedDespiteHistory(t *testing.T) {
	tasks := []model.Task{{
		ID:      "t1",
		Name:    "pack bags",
		DueDate: "2024-01-01",
		Subtasks: []model.Subtask{
			{ID: "s1", Text: "clothes", CompletedAt: "2024-01-02"},
		},
		CompletionHistory: model.NewDateSet("2024-01-02"),
	}}

	got, err := Compose(tasks, nil, nil, "2024-01-10", "")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1, "tasks with subtasks never disappear via history")
}

func TestComposeHabitsRequireRuleMatch(t *testing.T) {
	habits := []model.Habit{
		{
			ID: "h1", Name: "run", Type: model.HabitDailyCheckOff,
			Recurrence: model.RecurrenceRule{
				Type: model.RecurWeekly, StartDate: "2024-01-01", DaysOfWeek: []string{"Mon"},
			},
		},
		{
			ID: "h2", Name: "read", Type: model.HabitDailyCheckOff,
			Recurrence: model.RecurrenceRule{Type: model.RecurDaily, StartDate: "2024-01-01"},
		},
	}

	got, err := Compose(nil, habits, nil, "2024-01-01", "") // a Monday
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, sortedIDs(got.Entries))

	got, err = Compose(nil, habits, nil, "2024-01-02", "") // a Tuesday
	require.NoError(t, err)
	assert.Equal(t, []string{"h2"}, sortedIDs(got.Entries))
}

func TestComposeEventDateSpan(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Name: "conference", StartDate: "2024-01-10", EndDate: "2024-01-12"},
		{ID: "e2", Name: "dinner", StartDate: "2024-01-11"},
		{ID: "e3", Name: "later", StartDate: "2024-01-20"},
	}

	got, err := Compose(nil, nil, events, "2024-01-11", "")
	require.NoError(t, err)

	ids := make([]string, 0, len(got.EventsForDay))
	for _, ev := range got.EventsForDay {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"e1", "e2"}, ids)
}

func TestComposeProjectFilter(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Name: "work thing", ProjectID: "work"},
		{ID: "t2", Name: "home thing", ProjectID: "home"},
	}
	habits := []model.Habit{{
		ID: "h1", Name: "standup", ProjectID: "work", Type: model.HabitDailyCheckOff,
		Recurrence: model.RecurrenceRule{Type: model.RecurDaily, StartDate: "2024-01-01"},
	}}
	events := []model.Event{
		{ID: "e1", Name: "review", ProjectID: "work", StartDate: "2024-01-05"},
		{ID: "e2", Name: "party", ProjectID: "home", StartDate: "2024-01-05"},
	}

	got, err := Compose(tasks, habits, events, "2024-01-05", "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "t1"}, sortedIDs(got.Entries))
	require.Len(t, got.EventsForDay, 1)
	assert.Equal(t, "e1", got.EventsForDay[0].ID)

	for _, filter := range []string{"", ProjectAll} {
		got, err := Compose(tasks, habits, events, "2024-01-05", filter)
		require.NoError(t, err)
		assert.Len(t, got.Entries, 3, "filter %q passes everything", filter)
		assert.Len(t, got.EventsForDay, 2)
	}
}

func TestComposeDeterministic(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Name: "beta", Priority: intptr(5)},
		{ID: "t2", Name: "alpha", Priority: intptr(5)},
		{ID: "t3", Name: "gamma", DueTime: "09:00"},
	}
	habits := []model.Habit{{
		ID: "h1", Name: "alpha", Type: model.HabitDailyCheckOff,
		Recurrence: model.RecurrenceRule{Type: model.RecurDaily, StartDate: "2024-01-01"},
	}}
	events := []model.Event{
		{ID: "e1", Name: "standup", StartDate: "2024-01-05", StartTime: "09:30", EndTime: "09:45"},
		{ID: "e2", Name: "planning", StartDate: "2024-01-05", StartTime: "09:40", EndTime: "10:30"},
	}

	first, err := Compose(tasks, habits, events, "2024-01-05", "")
	require.NoError(t, err)
	second, err := Compose(tasks, habits, events, "2024-01-05", "")
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must yield identical output")
}

func TestComposeInvalidDateFailsLoudly(t *testing.T) {
	_, err := Compose(nil, nil, nil, "2024-13-40", "")
	assert.Error(t, err)

	tasks := []model.Task{{ID: "t1", Name: "bad", DueDate: "garbage"}}
	_, err = Compose(tasks, nil, nil, "2024-01-05", "")
	assert.Error(t, err)
}

func TestHabitChecklistCompletionResetsDaily(t *testing.T) {
	habit := &model.Habit{
		ID: "h1", Name: "morning routine", Type: model.HabitChecklist,
		Recurrence: model.RecurrenceRule{Type: model.RecurDaily, StartDate: "2024-01-01"},
		Tasks: []model.Subtask{
			{ID: "s1", Text: "stretch", CompletedAt: "2024-01-05"},
			{ID: "s2", Text: "meditate", CompletedAt: "2024-01-05"},
		},
	}

	assert.True(t, HabitCompletedOn(habit, "2024-01-05"))
	assert.False(t, HabitCompletedOn(habit, "2024-01-06"),
		"habit subtasks only count on the day they were checked")
}

func entryIDs(entries []model.AgendaEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID())
	}
	return out
}

// sortedIDs makes membership assertions independent of the comparator.
func sortedIDs(entries []model.AgendaEntry) []string {
	ids := entryIDs(entries)
	sort.Strings(ids)
	return ids
}
