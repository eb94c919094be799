// Package selection tracks a set of selected entries by ID.
package selection

import (
	"sort"

	"chronii/internal/domain"
)

// Set is a set of selected entry IDs. The zero value is empty and ready to use.
//
// Selection is keyed only by ID, so it survives reloads of the entry list.
// IDs that no longer exist are dropped from projections without error.
type Set struct {
	ids map[int64]struct{}
}

// New returns a set holding ids.
func New(ids ...int64) *Set {
	s := &Set{}
	s.Select(ids...)
	return s
}

// Toggle flips the selection state of id and reports whether it is now selected.
func (s *Set) Toggle(id int64) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.Select(id)
	return true
}

// Select adds ids to the selection.
func (s *Set) Select(ids ...int64) {
	if s.ids == nil {
		s.ids = make(map[int64]struct{}, len(ids))
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Deselect removes ids from the selection.
func (s *Set) Deselect(ids ...int64) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.ids = nil
}

// IsSelected reports whether id is selected.
func (s *Set) IsSelected(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected IDs, including ones that may no longer exist.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the selected IDs in ascending order.
func (s *Set) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Selected projects the selection onto entries, keeping entry order and
// skipping IDs that are not present.
func (s *Set) Selected(entries []domain.TimeEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(s.ids))
	if len(s.ids) == 0 {
		return out
	}
	for _, e := range entries {
		if s.IsSelected(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// Prune drops IDs not present in entries and returns how many were removed.
func (s *Set) Prune(entries []domain.TimeEntry) int {
	if len(s.ids) == 0 {
		return 0
	}
	present := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		present[e.ID] = struct{}{}
	}
	removed := 0
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
			removed++
		}
	}
	return removed
}
