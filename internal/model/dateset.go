package model

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// DateSet is a set of YYYY-MM-DD date strings. It records the dates an
// item was marked complete and is the membership structure behind every
// "was this done on that day" lookup, so lookups are O(1) rather than a
// loose scan over a list.
//
// On the wire (YAML snapshots, JSON API) a DateSet is a plain list of
// date strings; order is normalized to ascending on marshal so output is
// deterministic.
type DateSet map[string]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether date is a member. A nil set contains nothing.
func (s DateSet) Contains(date string) bool {
	_, ok := s[date]
	return ok
}

// Empty reports whether the set has no members. A nil set is empty.
func (s DateSet) Empty() bool {
	return len(s) == 0
}

// Add inserts date into the set, allocating if needed, and returns the set.
func (s DateSet) Add(date string) DateSet {
	if s == nil {
		s = make(DateSet, 1)
	}
	s[date] = struct{}{}
	return s
}

// Sorted returns the members in ascending order.
func (s DateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (s DateSet) MarshalYAML() (any, error) {
	if s == nil {
		return []string(nil), nil
	}
	return s.Sorted(), nil
}

func (s *DateSet) UnmarshalYAML(value *yaml.Node) error {
	var dates []string
	if err := value.Decode(&dates); err != nil {
		return err
	}
	*s = NewDateSet(dates...)
	return nil
}

func (s DateSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Sorted())
}

func (s *DateSet) UnmarshalJSON(data []byte) error {
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	*s = NewDateSet(dates...)
	return nil
}
