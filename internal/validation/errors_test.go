package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "validation error"},
		{"Single error", []FieldError{{Field: "task_name", Message: "is required"}}, "validation error for field 'task_name': is required"},
		{"Multiple errors", []FieldError{
			{Field: "task_name", Message: "is required"},
			{Field: "start_time", Message: "is required"},
		}, "multiple validation errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			assert.Contains(t, ve.Error(), tt.expected)
		})
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	tests := []struct {
		name         string
		add          func(*ValidationError)
		expectedType ValidationErrorType
		contains     string
	}{
		{"required", func(ve *ValidationError) { ve.AddRequiredError("task_name") }, ErrorTypeRequired, "task_name is required"},
		{"format", func(ve *ValidationError) { ve.AddInvalidFormatError("since", "x", "30m") }, ErrorTypeInvalidFormat, "expected: 30m"},
		{"length range", func(ve *ValidationError) { ve.AddInvalidLengthError("task_name", "", 1, 10) }, ErrorTypeInvalidLength, "between 1 and 10"},
		{"length max", func(ve *ValidationError) { ve.AddInvalidLengthError("project", "", 0, 10) }, ErrorTypeInvalidLength, "at most 10"},
		{"length min", func(ve *ValidationError) { ve.AddInvalidLengthError("project", "", 2, 0) }, ErrorTypeInvalidLength, "at least 2"},
		{"value", func(ve *ValidationError) { ve.AddInvalidValueError("id", -1, "must be positive") }, ErrorTypeInvalidValue, "must be positive"},
		{"range", func(ve *ValidationError) { ve.AddInvalidRangeError("time_range", nil, "inverted") }, ErrorTypeInvalidRange, "inverted"},
		{"character", func(ve *ValidationError) { ve.AddInvalidCharacterError("task_name", "a\nb") }, ErrorTypeInvalidCharacter, "invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.add(ve)

			assert.True(t, ve.HasErrors())
			assert.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.expectedType, ve.Errors[0].Type)
			assert.Contains(t, ve.Errors[0].Message, tt.contains)
		})
	}
}

// fieldErrors returns the errors recorded against field
func fieldErrors(ve *ValidationError, field string) []FieldError {
	var out []FieldError
	for _, err := range ve.Errors {
		if err.Field == field {
			out = append(out, err)
		}
	}
	return out
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	assert.Equal(t, "Input validation failed", NewValidationError().GetUserFriendlyMessage())

	single := NewValidationError()
	single.AddRequiredError("task_name")
	assert.Equal(t, "task_name is required", single.GetUserFriendlyMessage())

	multi := NewValidationError()
	multi.AddRequiredError("task_name")
	multi.AddRequiredError("start_time")
	msg := multi.GetUserFriendlyMessage()
	assert.Contains(t, msg, "Multiple validation errors occurred")
	assert.Contains(t, msg, "- start_time is required")
}

func TestValidationError_OrNilAndMerge(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	other := NewValidationError()
	other.AddRequiredError("task_name")
	ve.Merge(fmt.Errorf("wrapped: %w", other))
	ve.Merge(errors.New("not a validation error"))

	assert.Len(t, ve.Errors, 1)
	assert.Error(t, ve.OrNil())
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("task_name")

	assert.True(t, IsValidationError(ve))
	assert.True(t, IsValidationError(fmt.Errorf("context: %w", ve)))
	assert.False(t, IsValidationError(errors.New("regular error")))
}
