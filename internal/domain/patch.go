package domain

import "time"

// Optional distinguishes "not provided" from "provided as absent" for
// nullable fields in a patch.
type Optional[T any] struct {
	set   bool
	value *T
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: &v}
}

// Clear returns an Optional that explicitly sets the field to absent.
func Clear[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet reports whether the field was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Value returns the provided value, nil when the field is cleared or unset.
func (o Optional[T]) Value() *T {
	if o.value == nil {
		return nil
	}
	v := *o.value
	return &v
}

// EntryPatch describes a partial update to a TimeEntry. Only provided fields
// are applied. Clearing EndTime reopens the entry.
type EntryPatch struct {
	TaskName  *string
	Project   Optional[string]
	StartTime *time.Time
	EndTime   Optional[time.Time]
	Logged    *bool
}

// IsEmpty reports whether the patch carries no fields.
func (p EntryPatch) IsEmpty() bool {
	return p.TaskName == nil && !p.Project.IsSet() && p.StartTime == nil && !p.EndTime.IsSet() && p.Logged == nil
}
