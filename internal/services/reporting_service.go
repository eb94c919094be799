package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"chronii/internal/aggregation"
	"chronii/internal/errors"
	"chronii/internal/grouping"
	"chronii/internal/validation"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	store     Store
	clock     clockwork.Clock
	validator *validation.EntryValidator
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(store Store, clock clockwork.Clock, validator *validation.EntryValidator) ReportingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validator == nil {
		validator = validation.NewEntryValidator()
	}
	return &reportingServiceImpl{store: store, clock: clock, validator: validator}
}

// Summary returns today, this week and this month totals
func (r *reportingServiceImpl) Summary(ctx context.Context) (*aggregation.Summary, error) {
	now := r.clock.Now()
	weekStart, weekEnd := grouping.WeekBounds(now)
	monthStart := grouping.MonthStart(now)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Millisecond)

	start := weekStart
	if monthStart.Before(start) {
		start = monthStart
	}
	end := weekEnd
	if monthEnd.After(end) {
		end = monthEnd
	}

	entries, err := r.store.ListEntriesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Running entries that started before the window still belong in Running.
	active, err := r.store.GetActiveEntry(ctx)
	if err != nil {
		return nil, err
	}

	summary := aggregation.Summarize(entries, now)
	if summary.Running == nil && active != nil {
		summary.Running = active
	}
	return &summary, nil
}

// Range aggregates entries that started within [start, end]
func (r *reportingServiceImpl) Range(ctx context.Context, start, end time.Time) (*RangeReport, error) {
	if err := r.validator.ValidateRange(start, end); err != nil {
		return nil, errors.NewValidationError("invalid report range", err)
	}

	entries, err := r.store.ListEntriesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	view := aggregation.Compute(grouping.Group(entries, now), now)

	byProject := make(map[string]*ProjectTotal)
	for _, e := range entries {
		name := e.ProjectName()
		pt, ok := byProject[name]
		if !ok {
			pt = &ProjectTotal{Name: name}
			byProject[name] = pt
		}
		pt.Total += aggregation.EntryDuration(e, now)
		pt.Count++
	}

	totals := make([]ProjectTotal, 0, len(byProject))
	for _, pt := range byProject {
		totals = append(totals, *pt)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].Name < totals[j].Name
	})

	return &RangeReport{
		Range:     TimeRange{Start: start, End: end},
		View:      view,
		ByProject: totals,
	}, nil
}

// ParseTimeRange converts time shorthand ("30m", "2h", "1d", "2w", "3mo", "1y")
// into the range ending now
func (r *reportingServiceImpl) ParseTimeRange(shorthand string) (*TimeRange, error) {
	if err := r.validator.ValidateTimeShorthand(shorthand); err != nil {
		return nil, errors.NewValidationError("invalid time range", err)
	}

	now := r.clock.Now()
	start, err := subtractShorthand(now, shorthand)
	if err != nil {
		return nil, err
	}
	return &TimeRange{Start: start, End: now}, nil
}

// subtractShorthand moves t back by a validated shorthand. Calendar units
// (days and longer) use AddDate so DST changes keep local wall-clock times.
func subtractShorthand(t time.Time, shorthand string) (time.Time, error) {
	i := 0
	for i < len(shorthand) && shorthand[i] >= '0' && shorthand[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(shorthand[:i])
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError("time_shorthand", shorthand, "invalid number")
	}

	switch shorthand[i:] {
	case "m":
		return t.Add(-time.Duration(n) * time.Minute), nil
	case "h":
		return t.Add(-time.Duration(n) * time.Hour), nil
	case "d":
		return t.AddDate(0, 0, -n), nil
	case "w":
		return t.AddDate(0, 0, -7*n), nil
	case "mo":
		return t.AddDate(0, -n, 0), nil
	case "y":
		return t.AddDate(-n, 0, 0), nil
	default:
		return time.Time{}, errors.NewInvalidInputError("time_shorthand", shorthand, "unknown unit")
	}
}
