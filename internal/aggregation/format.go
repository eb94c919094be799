package aggregation

import (
	"fmt"
	"time"

	"chronii/internal/domain"
)

// FormatDuration renders an entry duration with second precision:
// "2h 15m 30s", "15m 30s" or "30s". Negative values render as zero.
func FormatDuration(d time.Duration) string {
	total := int64(domain.DisplayDuration(d) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTotal renders a day or week total rounded to the nearest minute:
// "2h 15m" or "15m".
func FormatTotal(d time.Duration) string {
	minutes := int64(domain.DisplayDuration(d).Round(time.Minute) / time.Minute)
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatTimer renders a running timer in colon notation: "1:23:45" or "23:45".
func FormatTimer(d time.Duration) string {
	total := int64(domain.DisplayDuration(d) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
