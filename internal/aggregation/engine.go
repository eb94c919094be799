package aggregation

import (
	"time"

	"chronii/internal/domain"
	"chronii/internal/grouping"
)

// dayState caches what a clock tick needs to re-sum one day: the total of
// its closed entries and the start times of its open ones.
type dayState struct {
	closed time.Duration
	open   []time.Time
}

// Engine memoizes grouping and totals over three inputs: the entry list, the
// project filter and the clock.
//
// Changing entries or the filter invalidates the grouping. A tick only
// re-sums open durations against cached closed sums, unless it crosses
// midnight, in which case the relative day and week labels are rebuilt.
//
// Engine is not safe for concurrent use; callers serialise access.
type Engine struct {
	entries []domain.TimeEntry
	filter  domain.ProjectFilter
	now     time.Time

	structDirty bool
	totalsDirty bool
	builtFor    time.Time // midnight of the day the labels were computed for

	weeks  []grouping.WeekGroup
	states [][]dayState
	view   View

	rebuilds int
}

// NewEngine creates an empty engine evaluated at now.
func NewEngine(now time.Time) *Engine {
	return &Engine{now: now, filter: domain.AllProjects(), structDirty: true}
}

// SetEntries replaces the entry list. The engine keeps its own copy.
func (e *Engine) SetEntries(entries []domain.TimeEntry) {
	e.entries = make([]domain.TimeEntry, len(entries))
	for i, te := range entries {
		e.entries[i] = te.Clone()
	}
	e.structDirty = true
}

// Entries returns the unfiltered entry list.
func (e *Engine) Entries() []domain.TimeEntry {
	out := make([]domain.TimeEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// SetFilter changes the project filter. Setting the current filter again is a no-op.
func (e *Engine) SetFilter(f domain.ProjectFilter) {
	if f == e.filter {
		return
	}
	e.filter = f
	e.structDirty = true
}

// Filter returns the active project filter.
func (e *Engine) Filter() domain.ProjectFilter {
	return e.filter
}

// Tick advances the clock.
func (e *Engine) Tick(now time.Time) {
	e.now = now
	e.totalsDirty = true
	if !grouping.StartOfDay(now).Equal(e.builtFor) {
		e.structDirty = true
	}
}

// Now returns the clock value of the last Tick.
func (e *Engine) Now() time.Time {
	return e.now
}

// HasOpen reports whether any entry in the filtered view is running.
func (e *Engine) HasOpen() bool {
	return e.View().Open
}

// Rebuilds returns how many times the grouping has been recomputed.
func (e *Engine) Rebuilds() int {
	return e.rebuilds
}

// View returns the aggregated view, recomputing only what is stale.
func (e *Engine) View() View {
	if e.structDirty {
		e.rebuild()
	} else if e.totalsDirty {
		e.retotal()
	}
	return e.view
}

func (e *Engine) rebuild() {
	e.weeks = grouping.Group(e.filter.Apply(e.entries), e.now)
	e.builtFor = grouping.StartOfDay(e.now)
	e.states = make([][]dayState, len(e.weeks))
	for wi, w := range e.weeks {
		e.states[wi] = make([]dayState, len(w.Days))
		for di, d := range w.Days {
			var st dayState
			for _, te := range d.Entries {
				if te.IsOpen() {
					st.open = append(st.open, te.StartTime)
					continue
				}
				st.closed += EntryDuration(te, e.now)
			}
			e.states[wi][di] = st
		}
	}
	e.rebuilds++
	e.structDirty = false
	e.retotal()
}

// retotal refreshes totals in place from the cached day states.
func (e *Engine) retotal() {
	view := View{Now: e.now, Weeks: make([]WeekView, len(e.weeks))}
	for wi, w := range e.weeks {
		wv := WeekView{Label: w.Label, Start: w.Start, End: w.End, Days: make([]DayView, len(w.Days))}
		for di, d := range w.Days {
			st := e.states[wi][di]
			total := st.closed
			for _, start := range st.open {
				total += domain.DisplayDuration(e.now.Sub(start))
			}
			if len(st.open) > 0 {
				view.Open = true
			}
			wv.Days[di] = DayView{DayGroup: d, Total: total}
			wv.Total += total
		}
		view.Weeks[wi] = wv
		view.Total += wv.Total
	}
	e.view = view
	e.totalsDirty = false
}
