package sqlite

import (
	"time"
)

// ToMillis converts a time.Time to integer milliseconds since the Unix epoch for storage
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// ToMillisPtr converts a *time.Time to milliseconds, returning nil if the pointer is nil
func ToMillisPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return ToMillis(*t)
}

// FromMillis converts stored milliseconds back to a local time.Time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).Local()
}
