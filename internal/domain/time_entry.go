package domain

import (
	"strings"
	"time"
)

// UntitledTaskName is the sentinel label used when a timer is started without a name.
const UntitledTaskName = "(untitled)"

// TimeEntry represents a recorded or in-progress interval of work.
// This is a pure domain model without database-specific concerns.
type TimeEntry struct {
	ID        int64
	TaskName  string
	Project   *string
	StartTime time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Logged    bool
}

// NewTimeEntry creates a new open TimeEntry for the given task.
func NewTimeEntry(taskName string, project *string, startTime time.Time) TimeEntry {
	return TimeEntry{
		TaskName:  taskName,
		Project:   project,
		StartTime: startTime,
	}
}

// IsOpen returns true if the time entry is still running (no end time).
func (te TimeEntry) IsOpen() bool {
	return te.EndTime == nil
}

// Stop sets the end time for the time entry.
func (te TimeEntry) Stop(endTime time.Time) TimeEntry {
	te.EndTime = &endTime
	return te
}

// StopTime returns the end an open entry gets when it is stopped at now. An
// entry that starts after now is closed at its own start rather than inverted.
func (te TimeEntry) StopTime(now time.Time) time.Time {
	if now.Before(te.StartTime) {
		return te.StartTime
	}
	return now
}

// Duration returns (EndTime or now) - StartTime. The result is negative when
// now precedes the start of an open entry; callers that display it should use
// DisplayDuration.
func (te TimeEntry) Duration(now time.Time) time.Duration {
	if te.EndTime == nil {
		return now.Sub(te.StartTime)
	}
	return te.EndTime.Sub(te.StartTime)
}

// DisplayDuration clamps a duration to zero for presentation.
func DisplayDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// ProjectName returns the project label or the empty string for "no project".
func (te TimeEntry) ProjectName() string {
	if te.Project == nil {
		return ""
	}
	return *te.Project
}

// HasProject reports whether the entry belongs to a named project.
func (te TimeEntry) HasProject() bool {
	return te.Project != nil
}

// IsUntitled reports whether the entry carries the untitled sentinel label.
func (te TimeEntry) IsUntitled() bool {
	return IsUntitled(te.TaskName)
}

// IsUntitled reports whether a task name is empty or the untitled sentinel.
func IsUntitled(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed == "" || trimmed == UntitledTaskName
}

// IsValid checks if the time entry has valid data.
func (te TimeEntry) IsValid() bool {
	if strings.TrimSpace(te.TaskName) == "" {
		return false
	}
	if te.StartTime.IsZero() {
		return false
	}
	if te.EndTime != nil && te.EndTime.Before(te.StartTime) {
		return false
	}
	return true
}

// Apply returns a copy of the entry with the patch's provided fields merged in.
// The receiver is not modified.
func (te TimeEntry) Apply(p EntryPatch) TimeEntry {
	if p.TaskName != nil {
		te.TaskName = *p.TaskName
	}
	if p.Project.IsSet() {
		te.Project = p.Project.Value()
	}
	if p.StartTime != nil {
		te.StartTime = *p.StartTime
	}
	if p.EndTime.IsSet() {
		te.EndTime = p.EndTime.Value()
	}
	if p.Logged != nil {
		te.Logged = *p.Logged
	}
	return te
}

// Clone returns a deep copy so callers can hand entries across goroutines
// without sharing the pointer fields.
func (te TimeEntry) Clone() TimeEntry {
	if te.Project != nil {
		p := *te.Project
		te.Project = &p
	}
	if te.EndTime != nil {
		e := *te.EndTime
		te.EndTime = &e
	}
	return te
}

// AnyOpen reports whether at least one entry is running.
func AnyOpen(entries []TimeEntry) bool {
	for _, e := range entries {
		if e.IsOpen() {
			return true
		}
	}
	return false
}
