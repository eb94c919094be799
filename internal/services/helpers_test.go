package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"chronii/internal/domain"
	"chronii/internal/repository/sqlite"
	"chronii/internal/validation"
)

// Monday, March 10 2025 at 10:00 local time.
var baseTime = time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)

type fixture struct {
	clock    clockwork.FakeClock
	repo     *sqlite.SQLiteRepository
	entries  EntryService
	projects ProjectService
	reports  ReportingService
}

func setupServices(t *testing.T) *fixture {
	t.Helper()
	return setupServicesWithRules(t, validation.DefaultRules())
}

func setupServicesWithRules(t *testing.T, rules validation.Rules) *fixture {
	t.Helper()
	fc := clockwork.NewFakeClockAt(baseTime)
	repo, err := sqlite.NewWithOptions(sqlite.MemoryPath, sqlite.Options{Clock: fc})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	container := NewServiceContainer(repo, fc, validation.NewEntryValidatorWith(validation.NewValidatorWithRules(rules)))
	return &fixture{
		clock:    fc,
		repo:     repo,
		entries:  container.EntryService,
		projects: container.ProjectService,
		reports:  container.ReportingService,
	}
}

// seed inserts an entry directly through the store
func (f *fixture) seed(t *testing.T, name string, start time.Time, end *time.Time, project *string) domain.TimeEntry {
	t.Helper()
	ctx := context.Background()
	entry, err := f.repo.CreateEntry(ctx, name, start, project)
	require.NoError(t, err)
	if end != nil {
		entry, err = f.repo.StopEntry(ctx, entry.ID, *end)
		require.NoError(t, err)
	}
	return *entry
}

func (f *fixture) openEntries(t *testing.T) []domain.TimeEntry {
	t.Helper()
	all, err := f.repo.ListEntries(context.Background(), 0, 0, domain.AllProjects())
	require.NoError(t, err)
	var open []domain.TimeEntry
	for _, e := range all {
		if e.IsOpen() {
			open = append(open, e)
		}
	}
	return open
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.Local)
}
