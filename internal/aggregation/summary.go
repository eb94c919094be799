package aggregation

import (
	"time"

	"chronii/internal/domain"
	"chronii/internal/grouping"
)

// Summary holds the totals shown in the summary panel. An entry counts toward
// a period when it started inside it.
type Summary struct {
	Now   time.Time
	Today time.Duration
	Week  time.Duration
	Month time.Duration
	// Running is the open entry with the latest start, if any.
	Running *domain.TimeEntry
}

// Summarize computes today, this week (Sunday-aligned) and this month totals at now.
func Summarize(entries []domain.TimeEntry, now time.Time) Summary {
	today := grouping.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart, _ := grouping.WeekBounds(now)
	nextWeek := weekStart.AddDate(0, 0, 7)
	monthStart := grouping.MonthStart(now)
	nextMonth := monthStart.AddDate(0, 1, 0)

	s := Summary{Now: now}
	for _, e := range entries {
		start := e.StartTime.In(now.Location())
		d := EntryDuration(e, now)

		if !start.Before(today) && start.Before(tomorrow) {
			s.Today += d
		}
		if !start.Before(weekStart) && start.Before(nextWeek) {
			s.Week += d
		}
		if !start.Before(monthStart) && start.Before(nextMonth) {
			s.Month += d
		}
		if e.IsOpen() && (s.Running == nil || e.StartTime.After(s.Running.StartTime)) {
			running := e.Clone()
			s.Running = &running
		}
	}
	return s
}
