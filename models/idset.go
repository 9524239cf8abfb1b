package models

import "strings"

// IDSet is a set of entity IDs keyed by their canonical string form.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string) {
	if id = strings.TrimSpace(id); id != "" {
		s[id] = struct{}{}
	}
}

func (s IDSet) Has(id string) bool {
	_, ok := s[strings.TrimSpace(id)]
	return ok
}

// UniqueIDs trims and de-duplicates ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(IDSet, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen.Has(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}

// SubtractIDs returns the unique members of from that are not in minus, in
// first-seen order.
func SubtractIDs(from, minus []string) []string {
	exclude := NewIDSet(minus...)
	out := make([]string, 0, len(from))
	for _, id := range UniqueIDs(from) {
		if !exclude.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
