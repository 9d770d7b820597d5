// Package store loads the read-only entity snapshot maintained by the
// host application. The engine never writes entities back; the snapshot
// is re-read whenever the host's state changes.
package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	appLog "dayboard/internal/log"
	"dayboard/internal/model"
)

// Snapshot is the full entity state the agenda is composed from.
type Snapshot struct {
	Tasks  []model.Task  `yaml:"tasks" json:"tasks"`
	Habits []model.Habit `yaml:"habits" json:"habits"`
	Events []model.Event `yaml:"events" json:"events"`
}

// Load reads and validates a snapshot from a YAML file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	appLog.Info("snapshot loaded",
		"path", path,
		"tasks", len(snap.Tasks),
		"habits", len(snap.Habits),
		"events", len(snap.Events),
	)
	return &snap, nil
}

// Validate checks the invariants the engine relies on: parsable dates,
// mandatory habit recurrence, positive intervals. Entity data comes from
// the host's own model, so a violation is reported loudly instead of
// being skipped.
func (s *Snapshot) Validate() error {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.ID == "" {
			return fmt.Errorf("store: task %d has no id", i)
		}
		if err := checkRule(t.Recurrence); err != nil {
			return fmt.Errorf("store: task %s: %w", t.ID, err)
		}
		if t.Recurrence == nil && t.DueDate != "" {
			if _, err := model.ParseDate(t.DueDate); err != nil {
				return fmt.Errorf("store: task %s: %w", t.ID, err)
			}
		}
	}

	for i := range s.Habits {
		h := &s.Habits[i]
		if h.ID == "" {
			return fmt.Errorf("store: habit %d has no id", i)
		}
		if h.Recurrence.Type == "" {
			return fmt.Errorf("store: habit %s has no recurrence", h.ID)
		}
		if err := checkRule(&h.Recurrence); err != nil {
			return fmt.Errorf("store: habit %s: %w", h.ID, err)
		}
	}

	for i := range s.Events {
		e := &s.Events[i]
		if e.ID == "" {
			return fmt.Errorf("store: event %d has no id", i)
		}
		if _, err := model.ParseDate(e.StartDate); err != nil {
			return fmt.Errorf("store: event %s: %w", e.ID, err)
		}
		if e.EndDate != "" {
			if _, err := model.ParseDate(e.EndDate); err != nil {
				return fmt.Errorf("store: event %s: %w", e.ID, err)
			}
		}
	}

	return nil
}

func checkRule(rule *model.RecurrenceRule) error {
	if rule == nil {
		return nil
	}
	if _, err := model.ParseDate(rule.StartDate); err != nil {
		return err
	}
	if rule.Interval < 0 {
		return fmt.Errorf("recurrence interval must be positive, got %d", rule.Interval)
	}
	return nil
}
