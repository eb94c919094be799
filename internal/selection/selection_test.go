package selection

import (
	"testing"
	"time"

	"chronii/internal/domain"

	"github.com/stretchr/testify/assert"
)

func entries(ids ...int64) []domain.TimeEntry {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]domain.TimeEntry, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.TimeEntry{ID: id, TaskName: "task", StartTime: base.Add(time.Duration(i) * time.Hour)})
	}
	return out
}

func selectedIDs(list []domain.TimeEntry) []int64 {
	out := []int64{}
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestSet_ZeroValue(t *testing.T) {
	var s Set
	assert.False(t, s.IsSelected(1))
	assert.Empty(t, s.Selected(entries(1, 2)))
	assert.Empty(t, s.IDs())
	s.Deselect(1)
	assert.Zero(t, s.Prune(nil))
}

func TestSet_Toggle(t *testing.T) {
	s := New()

	assert.True(t, s.Toggle(5))
	assert.True(t, s.IsSelected(5))
	assert.False(t, s.Toggle(5))
	assert.False(t, s.IsSelected(5))
	assert.Equal(t, 0, s.Len())
}

func TestSet_SelectDeselectClear(t *testing.T) {
	s := New(3, 1)
	s.Select(2)
	assert.Equal(t, []int64{1, 2, 3}, s.IDs())

	s.Deselect(2)
	assert.Equal(t, []int64{1, 3}, s.IDs())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Selected(entries(1, 3)))
}

func TestSet_SurvivesReload(t *testing.T) {
	s := New()
	s.Toggle(5)

	first := entries(4, 5, 6)
	assert.Equal(t, []int64{5}, selectedIDs(s.Selected(first)))

	// A reload returns fresh values with the same IDs in a different order.
	reloaded := entries(6, 5, 4, 7)
	assert.Equal(t, []int64{5}, selectedIDs(s.Selected(reloaded)))
}

func TestSet_DropsDeletedIDs(t *testing.T) {
	s := New(5, 6)

	afterDelete := entries(4, 6)

	assert.Equal(t, []int64{6}, selectedIDs(s.Selected(afterDelete)))
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, 1, s.Prune(afterDelete))
	assert.Equal(t, []int64{6}, s.IDs())
}

func TestSet_SelectedKeepsEntryOrder(t *testing.T) {
	s := New(1, 3)
	assert.Equal(t, []int64{3, 1}, selectedIDs(s.Selected(entries(3, 2, 1))))
}
