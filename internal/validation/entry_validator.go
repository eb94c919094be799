package validation

import (
	"time"

	"chronii/internal/domain"
)

// EntryValidator validates time entry and project input
type EntryValidator struct {
	validator *Validator
}

// NewEntryValidator creates a new entry validator with default rules
func NewEntryValidator() *EntryValidator {
	return &EntryValidator{validator: NewValidator()}
}

// NewEntryValidatorWith wraps an existing Validator
func NewEntryValidatorWith(v *Validator) *EntryValidator {
	return &EntryValidator{validator: v}
}

// CleanTaskName validates a task name and returns its normalized form.
// An empty name becomes the untitled sentinel when substitution is enabled.
func (ev *EntryValidator) CleanTaskName(name string) (string, error) {
	validationError := NewValidationError()
	cleaned := ev.validator.NormalizeLabel(name)

	if !ev.validator.IsNonEmptyString(cleaned) {
		if ev.validator.rules.SubstituteUntitled {
			return domain.UntitledTaskName, nil
		}
		validationError.AddRequiredError("task_name")
		return "", validationError
	}

	rules := ev.validator.rules
	if !ev.validator.IsValidTaskNameLength(cleaned) {
		validationError.AddInvalidLengthError("task_name", cleaned, rules.TaskNameMinLength, rules.TaskNameMaxLength)
	}
	if !ev.validator.IsValidLabel(cleaned) {
		validationError.AddInvalidCharacterError("task_name", cleaned)
	}

	if err := validationError.OrNil(); err != nil {
		return "", err
	}
	return cleaned, nil
}

// CleanProjectName validates an optional project label. nil and blank
// labels both mean "no project" and yield nil.
func (ev *EntryValidator) CleanProjectName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	cleaned := ev.validator.NormalizeLabel(*name)
	if cleaned == "" {
		return nil, nil
	}

	validationError := NewValidationError()
	if !ev.validator.IsValidStringLength(cleaned, 1, ev.validator.rules.ProjectNameMaxLength) {
		validationError.AddInvalidLengthError("project", cleaned, 0, ev.validator.rules.ProjectNameMaxLength)
	}
	if !ev.validator.IsValidLabel(cleaned) {
		validationError.AddInvalidCharacterError("project", cleaned)
	}

	if err := validationError.OrNil(); err != nil {
		return nil, err
	}
	return &cleaned, nil
}

// RequireProjectName is CleanProjectName for operations where a name is mandatory
func (ev *EntryValidator) RequireProjectName(name string) (string, error) {
	cleaned, err := ev.CleanProjectName(&name)
	if err != nil {
		return "", err
	}
	if cleaned == nil {
		validationError := NewValidationError()
		validationError.AddRequiredError("project")
		return "", validationError
	}
	return *cleaned, nil
}

// ValidateEntry validates a complete entry, typically the result of applying a patch
func (ev *EntryValidator) ValidateEntry(entry domain.TimeEntry) error {
	validationError := NewValidationError()

	if !ev.validator.IsNonEmptyString(entry.TaskName) {
		validationError.AddRequiredError("task_name")
	}

	if entry.StartTime.IsZero() {
		validationError.AddRequiredError("start_time")
	} else if !ev.validator.IsValidTimeRange(entry.StartTime, entry.EndTime) {
		validationError.AddInvalidRangeError("time_range", map[string]time.Time{
			"start": entry.StartTime,
			"end":   *entry.EndTime,
		}, "end time must not be before start time")
	}

	return validationError.OrNil()
}

// CleanPatch normalizes the labels a patch carries. Time fields are left for
// ValidateEntry, which sees them merged with the stored entry.
func (ev *EntryValidator) CleanPatch(patch domain.EntryPatch) (domain.EntryPatch, error) {
	validationError := NewValidationError()

	if patch.TaskName != nil {
		name, err := ev.CleanTaskName(*patch.TaskName)
		if err != nil {
			validationError.Merge(err)
		} else {
			patch.TaskName = &name
		}
	}

	if patch.Project.IsSet() {
		project, err := ev.CleanProjectName(patch.Project.Value())
		switch {
		case err != nil:
			validationError.Merge(err)
		case project == nil:
			patch.Project = domain.Clear[string]()
		default:
			patch.Project = domain.Set(*project)
		}
	}

	if patch.StartTime != nil && patch.StartTime.IsZero() {
		validationError.AddRequiredError("start_time")
	}

	if err := validationError.OrNil(); err != nil {
		return patch, err
	}
	return patch, nil
}

// ValidateEntryID validates a time entry ID
func (ev *EntryValidator) ValidateEntryID(id int64) error {
	if !ev.validator.IsValidEntryID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("time_entry_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

// ValidateTimeShorthand validates time shorthand format (e.g., "30m", "2h", "1d")
func (ev *EntryValidator) ValidateTimeShorthand(shorthand string) error {
	if !ev.validator.IsValidTimeShorthand(shorthand) {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("time_shorthand", shorthand, "30m, 2h, 1d, 2w, 3mo, 1y")
		return validationError
	}
	return nil
}

// ValidateRange validates a reporting range
func (ev *EntryValidator) ValidateRange(start, end time.Time) error {
	validationError := NewValidationError()
	if start.IsZero() {
		validationError.AddRequiredError("start")
	}
	if end.IsZero() {
		validationError.AddRequiredError("end")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		validationError.AddInvalidRangeError("date_range", map[string]time.Time{
			"start": start,
			"end":   end,
		}, "end must be after or equal to start")
	}
	return validationError.OrNil()
}
