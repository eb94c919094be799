package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"chronii/internal/config"
)

var timeShorthandRegex = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// Rules holds the limits a Validator enforces
type Rules struct {
	TaskNameMinLength    int
	TaskNameMaxLength    int
	ProjectNameMaxLength int
	SubstituteUntitled   bool
}

// DefaultRules returns the limits used when no configuration is supplied
func DefaultRules() Rules {
	return Rules{
		TaskNameMinLength:    1,
		TaskNameMaxLength:    255,
		ProjectNameMaxLength: 100,
	}
}

// Validator provides common validation utilities
type Validator struct {
	rules Rules
}

// NewValidator creates a new validator instance with default rules
func NewValidator() *Validator {
	return &Validator{rules: DefaultRules()}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	if cfg == nil {
		return NewValidator()
	}
	return &Validator{rules: Rules{
		TaskNameMinLength:    cfg.Validation.TaskNameMinLength,
		TaskNameMaxLength:    cfg.Validation.TaskNameMaxLength,
		ProjectNameMaxLength: cfg.Validation.ProjectNameMaxLength,
		SubstituteUntitled:   cfg.Validation.SubstituteUntitled,
	}}
}

// NewValidatorWithRules creates a validator with explicit rules
func NewValidatorWithRules(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the active limits
func (v *Validator) Rules() Rules {
	return v.rules
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a trimmed string's rune count is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTaskNameLength checks if a task name length is within configured limits
func (v *Validator) IsValidTaskNameLength(name string) bool {
	return v.IsValidStringLength(name, v.rules.TaskNameMinLength, v.rules.TaskNameMaxLength)
}

// IsValidLabel rejects control characters such as newlines and tabs.
// Any printable Unicode is allowed.
func (v *Validator) IsValidLabel(name string) bool {
	for _, r := range name {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return false
		}
	}
	return true
}

// IsValidTimeRange checks that end is not before start. Zero-length intervals are valid.
func (v *Validator) IsValidTimeRange(startTime time.Time, endTime *time.Time) bool {
	if endTime == nil {
		return true // Running entry, no end time
	}
	return !endTime.Before(startTime)
}

// IsValidEntryID checks if an entry ID is valid (positive)
func (v *Validator) IsValidEntryID(id int64) bool {
	return id > 0
}

// IsValidTimeShorthand checks if a time shorthand format is valid
func (v *Validator) IsValidTimeShorthand(shorthand string) bool {
	matches := timeShorthandRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return false
	}

	value, err := strconv.Atoi(matches[1])
	return err == nil && value > 0
}

// IsReasonableDate checks if a date lies between ten years before and one year after now
func (v *Validator) IsReasonableDate(t, now time.Time) bool {
	tenYearsAgo := now.AddDate(-10, 0, 0)
	oneYearFromNow := now.AddDate(1, 0, 0)

	return t.After(tenYearsAgo) && t.Before(oneYearFromNow)
}

// NormalizeLabel trims whitespace and converts to NFC
func (v *Validator) NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
