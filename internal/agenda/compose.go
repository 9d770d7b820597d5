// Package agenda merges tasks, habits and events into the single ordered,
// date-scoped daily view: filtering each collection down to the items due
// on the selected date, sorting them with stable precedence rules, and
// packing overlapping timed events into side-by-side columns.
package agenda

import (
	"fmt"

	"dayboard/internal/model"
	"dayboard/internal/recur"
)

// ProjectAll is the project filter value that passes every item.
const ProjectAll = "all"

// Agenda is the composed view for one calendar date. Entries holds the
// ordered task+habit list; EventsForDay holds the date's events in input
// order (ordering for display is a separate concern, see SortEvents).
type Agenda struct {
	Date         string
	Entries      []model.AgendaEntry
	EventsForDay []model.Event
}

// Compose filters each collection to the items due on date, applies the
// optional project filter ("" and "all" pass everything), and returns the
// stably sorted agenda. Composition is deterministic: identical inputs
// yield identical output, membership and order included.
func Compose(tasks []model.Task, habits []model.Habit, events []model.Event, date, projectID string) (Agenda, error) {
	if _, err := model.ParseDate(date); err != nil {
		return Agenda{}, err
	}

	out := Agenda{Date: date}

	for i := range tasks {
		task := &tasks[i]
		if !projectMatches(task.ProjectID, projectID) {
			continue
		}
		keep, err := taskAppearsOn(task, date)
		if err != nil {
			return Agenda{}, err
		}
		if keep {
			out.Entries = append(out.Entries, model.AgendaEntry{Kind: model.KindTask, Task: task})
		}
	}

	for i := range habits {
		habit := &habits[i]
		if !projectMatches(habit.ProjectID, projectID) {
			continue
		}
		keep, err := recur.IsDueOn(&habit.Recurrence, date)
		if err != nil {
			return Agenda{}, fmt.Errorf("agenda: habit %s: %w", habit.ID, err)
		}
		if keep {
			out.Entries = append(out.Entries, model.AgendaEntry{Kind: model.KindHabit, Habit: habit})
		}
	}

	for _, ev := range events {
		if !projectMatches(ev.ProjectID, projectID) {
			continue
		}
		keep, err := eventCoversDate(ev, date)
		if err != nil {
			return Agenda{}, err
		}
		if keep {
			out.EventsForDay = append(out.EventsForDay, ev)
		}
	}

	sortEntries(out.Entries, date)
	return out, nil
}

// taskAppearsOn decides membership for a task. On top of the due rule,
// a non-recurring task with zero subtasks and a non-empty completion
// history only shows on the date it was completed: completing a single
// atomic task is terminal, it does not reappear on other days. Recurring
// tasks and checklists always stay listed; their per-day completion state
// only affects ordering.
func taskAppearsOn(task *model.Task, date string) (bool, error) {
	due, err := recur.IsTaskDueOn(task, date)
	if err != nil {
		return false, fmt.Errorf("agenda: task %s: %w", task.ID, err)
	}
	if !due {
		return false, nil
	}

	if task.Recurrence == nil && len(task.Subtasks) == 0 && !task.CompletionHistory.Empty() {
		return task.CompletionHistory.Contains(date), nil
	}
	return true, nil
}

// eventCoversDate keeps an event when date falls inside its inclusive
// [start, end-or-start] span.
func eventCoversDate(ev model.Event, date string) (bool, error) {
	start, err := model.ParseDate(ev.StartDate)
	if err != nil {
		return false, fmt.Errorf("agenda: event %s: %w", ev.ID, err)
	}
	end := start
	if ev.EndDate != "" {
		end, err = model.ParseDate(ev.EndDate)
		if err != nil {
			return false, fmt.Errorf("agenda: event %s: %w", ev.ID, err)
		}
	}
	day, err := model.ParseDate(date)
	if err != nil {
		return false, err
	}
	return !day.Before(start) && !day.After(end), nil
}

func projectMatches(itemProject, filter string) bool {
	if filter == "" || filter == ProjectAll {
		return true
	}
	return itemProject == filter
}

// TaskCompletedOn reports the task's completion state for one date: the
// completion history names the date, or (for a checklist) every subtask
// is checked off.
func TaskCompletedOn(task *model.Task, date string) bool {
	if task.CompletionHistory.Contains(date) {
		return true
	}
	if len(task.Subtasks) == 0 {
		return false
	}
	for _, st := range task.Subtasks {
		if st.CompletedAt == "" {
			return false
		}
	}
	return true
}

// HabitCompletedOn reports the habit's completion state for one date.
// Checklist habits reset daily, so a subtask only counts when it was
// checked off on exactly that date.
func HabitCompletedOn(habit *model.Habit, date string) bool {
	if habit.Type == model.HabitChecklist && len(habit.Tasks) > 0 {
		for _, st := range habit.Tasks {
			if st.CompletedAt != date {
				return false
			}
		}
		return true
	}
	return habit.CompletionHistory.Contains(date)
}

func entryCompletedOn(e model.AgendaEntry, date string) bool {
	switch e.Kind {
	case model.KindTask:
		return TaskCompletedOn(e.Task, date)
	case model.KindHabit:
		return HabitCompletedOn(e.Habit, date)
	}
	return false
}
