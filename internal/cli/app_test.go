package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronii/internal/errors"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name           string
		arg            string
		expected       int64
		errorAssertion func(t *testing.T, err error)
	}{
		{name: "should parse a plain id", arg: "12", expected: 12},
		{name: "should accept a hash prefix", arg: "#7", expected: 7},
		{
			name: "should reject zero",
			arg:  "0",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
			},
		},
		{
			name: "should reject text",
			arg:  "abc",
			errorAssertion: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "entry id must be a positive number")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			id, err := parseID(tt.arg)

			// Assert
			if tt.errorAssertion != nil {
				require.Error(t, err)
				tt.errorAssertion(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestParseWhen(t *testing.T) {
	now := baseTime

	tests := []struct {
		name      string
		value     string
		expected  time.Time
		expectErr bool
	}{
		{name: "should return now", value: "now", expected: now},
		{name: "should read a bare clock time as today", value: "08:15", expected: at(time.March, 10, 8, 15)},
		{name: "should read a date and time", value: "2025-03-07 14:30", expected: at(time.March, 7, 14, 30)},
		{name: "should read a date and time with seconds", value: "2025-03-07 14:30:00", expected: at(time.March, 7, 14, 30)},
		{name: "should read RFC 3339", value: "2025-03-07T14:30:00Z", expected: time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)},
		{name: "should read a relative phrase", value: "2 hours ago", expected: now.Add(-2 * time.Hour)},
		{name: "should reject an empty value", value: "  ", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := parseWhen(tt.value, now)

			// Assert
			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}
