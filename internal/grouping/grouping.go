// Package grouping partitions time entries into Sunday-aligned weeks and
// calendar days, with the relative labels used by the history view.
//
// All calendar math happens in the location of the "now" value handed to
// Group, so callers control the time zone by choosing their clock.
package grouping

import (
	"fmt"
	"sort"
	"time"

	"chronii/internal/domain"
)

// Label constants for relative buckets.
const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
	LabelThisWeek  = "This week"
	LabelLastWeek  = "Last week"
)

// DayGroup holds the entries that started on one calendar day.
type DayGroup struct {
	Label   string
	Date    time.Time // local midnight of the day
	Entries []domain.TimeEntry
}

// WeekGroup holds the day buckets of one Sunday-to-Saturday week.
type WeekGroup struct {
	Label string
	Start time.Time // Sunday 00:00
	End   time.Time // Saturday 23:59:59.999
	Days  []DayGroup
}

// Len returns the number of entries across all days of the week.
func (w WeekGroup) Len() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Entries)
	}
	return n
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekBounds returns the Sunday 00:00 and Saturday 23:59:59.999 bounding the
// week that contains t, in t's location.
func WeekBounds(t time.Time) (start, end time.Time) {
	midnight := StartOfDay(t)
	start = midnight.AddDate(0, 0, -int(midnight.Weekday()))
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// MonthStart returns 00:00 on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// DayLabel returns "Today", "Yesterday" or an absolute label for day as seen
// from now. The year is included only when it differs from now's year.
func DayLabel(day, now time.Time) string {
	day = StartOfDay(day.In(now.Location()))
	today := StartOfDay(now)

	switch {
	case day.Equal(today):
		return LabelToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return LabelYesterday
	case day.Year() != now.Year():
		return day.Format("Jan 2, 2006")
	default:
		return day.Format("Jan 2")
	}
}

// WeekLabel returns "This week", "Last week" or a date range for the week
// starting at start.
func WeekLabel(start, now time.Time) string {
	start = start.In(now.Location())
	thisWeek, _ := WeekBounds(now)

	switch {
	case start.Equal(thisWeek):
		return LabelThisWeek
	case start.Equal(thisWeek.AddDate(0, 0, -7)):
		return LabelLastWeek
	}

	last := start.AddDate(0, 0, 6)
	var label string
	if last.Month() == start.Month() {
		label = fmt.Sprintf("%s – %d", start.Format("Jan 2"), last.Day())
	} else {
		label = fmt.Sprintf("%s – %s", start.Format("Jan 2"), last.Format("Jan 2"))
	}
	if last.Year() != now.Year() {
		label += fmt.Sprintf(", %d", last.Year())
	}
	return label
}

// Group partitions entries into weeks and days as seen from now.
//
// Weeks are ordered newest first. Within a week Today comes first, then
// Yesterday, then the remaining days newest first. Entries within a day are
// ordered by descending start time, ties broken by descending ID.
//
// Group is a pure function of its arguments. An entry with a zero StartTime
// is a programmer error and panics.
func Group(entries []domain.TimeEntry, now time.Time) []WeekGroup {
	loc := now.Location()

	type dayKey struct {
		y int
		m time.Month
		d int
	}
	weeks := make(map[int64]*WeekGroup)
	days := make(map[dayKey]*DayGroup)
	dayWeek := make(map[dayKey]int64)

	for _, e := range entries {
		if e.StartTime.IsZero() {
			panic(fmt.Sprintf("grouping: entry %d has no start time", e.ID))
		}
		start := e.StartTime.In(loc)
		y, m, d := start.Date()
		key := dayKey{y, m, d}

		day, ok := days[key]
		if !ok {
			midnight := StartOfDay(start)
			day = &DayGroup{Label: DayLabel(midnight, now), Date: midnight}
			days[key] = day

			ws, we := WeekBounds(midnight)
			wk := ws.UnixMilli()
			if _, ok := weeks[wk]; !ok {
				weeks[wk] = &WeekGroup{Label: WeekLabel(ws, now), Start: ws, End: we}
			}
			dayWeek[key] = wk
		}
		day.Entries = append(day.Entries, e)
	}

	for key, day := range days {
		sortEntries(day.Entries)
		w := weeks[dayWeek[key]]
		w.Days = append(w.Days, *day)
	}

	out := make([]WeekGroup, 0, len(weeks))
	for _, w := range weeks {
		sortDays(w.Days)
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.After(out[j].Start)
	})
	return out
}

func sortEntries(entries []domain.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		return a.ID > b.ID
	})
}

func dayRank(label string) int {
	switch label {
	case LabelToday:
		return 0
	case LabelYesterday:
		return 1
	default:
		return 2
	}
}

func sortDays(days []DayGroup) {
	sort.Slice(days, func(i, j int) bool {
		ri, rj := dayRank(days[i].Label), dayRank(days[j].Label)
		if ri != rj {
			return ri < rj
		}
		return days[i].Entries[0].StartTime.After(days[j].Entries[0].StartTime)
	})
}

// Flatten returns the entries of weeks in display order.
func Flatten(weeks []WeekGroup) []domain.TimeEntry {
	var out []domain.TimeEntry
	for _, w := range weeks {
		for _, d := range w.Days {
			out = append(out, d.Entries...)
		}
	}
	return out
}
