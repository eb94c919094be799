// Package aggregation computes day and week totals over grouped entries.
//
// Totals are exact sums of clamped durations: a day total is the sum of its
// entries and a week total is the sum of its day totals, with every open entry
// measured against the same "now".
package aggregation

import (
	"time"

	"chronii/internal/domain"
	"chronii/internal/grouping"
)

// DayView is a day bucket with its total.
type DayView struct {
	grouping.DayGroup
	Total time.Duration
}

// WeekView is a week bucket with its total.
type WeekView struct {
	Label string
	Start time.Time
	End   time.Time
	Days  []DayView
	Total time.Duration
}

// View is the fully aggregated history as seen at Now.
type View struct {
	Now   time.Time
	Weeks []WeekView
	Total time.Duration
	// Open is true when at least one entry in the view is running.
	Open bool
}

// Entries returns the view's entries in display order.
func (v View) Entries() []domain.TimeEntry {
	var out []domain.TimeEntry
	for _, w := range v.Weeks {
		for _, d := range w.Days {
			out = append(out, d.Entries...)
		}
	}
	return out
}

// Len returns the number of entries in the view.
func (v View) Len() int {
	n := 0
	for _, w := range v.Weeks {
		for _, d := range w.Days {
			n += len(d.Entries)
		}
	}
	return n
}

// EntryDuration is the displayed duration of one entry: negative spans
// clamp to zero.
func EntryDuration(e domain.TimeEntry, now time.Time) time.Duration {
	return domain.DisplayDuration(e.Duration(now))
}

// Total sums the displayed durations of entries at now.
func Total(entries []domain.TimeEntry, now time.Time) time.Duration {
	var total time.Duration
	for _, e := range entries {
		total += EntryDuration(e, now)
	}
	return total
}

// Compute aggregates already grouped weeks at now. It does not modify weeks.
func Compute(weeks []grouping.WeekGroup, now time.Time) View {
	view := View{Now: now, Weeks: make([]WeekView, 0, len(weeks))}
	for _, w := range weeks {
		wv := WeekView{Label: w.Label, Start: w.Start, End: w.End, Days: make([]DayView, 0, len(w.Days))}
		for _, d := range w.Days {
			dv := DayView{DayGroup: d, Total: Total(d.Entries, now)}
			if domain.AnyOpen(d.Entries) {
				view.Open = true
			}
			wv.Total += dv.Total
			wv.Days = append(wv.Days, dv)
		}
		view.Total += wv.Total
		view.Weeks = append(view.Weeks, wv)
	}
	return view
}
