package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToMillis(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected int64
	}{
		{
			name:     "Unix epoch",
			input:    time.Unix(0, 0).UTC(),
			expected: 0,
		},
		{
			name:     "Valid time",
			input:    time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
			expected: 1705314645000,
		},
		{
			name:     "Sub-millisecond precision is truncated",
			input:    time.Date(2024, 1, 15, 10, 30, 45, 123456789, time.UTC),
			expected: 1705314645123,
		},
		{
			name:     "Time with timezone",
			input:    time.Date(2024, 1, 15, 5, 30, 45, 0, time.FixedZone("EST", -5*3600)),
			expected: 1705314645000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMillis(tt.input))
		})
	}
}

func TestToMillisPtr(t *testing.T) {
	assert.Nil(t, ToMillisPtr(nil))

	ts := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, int64(1705314645000), ToMillisPtr(&ts))
}

func TestFromMillis(t *testing.T) {
	original := time.Date(2024, 3, 10, 9, 15, 30, 250000000, time.UTC)

	result := FromMillis(ToMillis(original))

	assert.True(t, original.Equal(result))
	assert.Equal(t, time.Local, result.Location())
}
