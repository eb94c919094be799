package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"chronii/internal/config"
	"chronii/internal/domain"
	"chronii/internal/logging"
	"chronii/internal/repository/sqlite"
)

// Monday, March 10 2025 at 10:00 local time.
var baseTime = time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2025, month, day, hour, min, 0, 0, time.Local)
}

// sharedRepo keeps one in-memory database alive across command runs
type sharedRepo struct {
	*sqlite.SQLiteRepository
}

func (sharedRepo) Close() error { return nil }

type cliFixture struct {
	clock clockwork.FakeClock
	repo  *sqlite.SQLiteRepository
}

func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHRONII_DB_DIR", dir)
	t.Setenv(config.ConfigEnv, filepath.Join(dir, "missing.toml"))
	t.Setenv("CHRONII_DISPLAY_COLOR", "false")
	t.Setenv(logging.DebugEnv, "")

	fc := clockwork.NewFakeClockAt(baseTime)
	repo, err := sqlite.NewWithOptions(sqlite.MemoryPath, sqlite.Options{Clock: fc})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return &cliFixture{clock: fc, repo: repo}
}

// run executes one chronii invocation and returns its standard output
func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(Dependencies{
		Clock: f.clock,
		In:    strings.NewReader(stdin),
		Out:   &out,
		Err:   &errOut,
		LoadConfig: func(overrides *config.ConfigOverrides) (*config.Config, error) {
			return config.NewLoader().LoadWithOverrides(overrides)
		},
		OpenRepository: func(*config.Config) (sqlite.Repository, error) {
			return sharedRepo{f.repo}, nil
		},
	})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (f *cliFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := f.run(t, "", args...)
	require.NoError(t, err)
	return out
}

func (f *cliFixture) seed(t *testing.T, name string, project *string, start time.Time, end *time.Time) domain.TimeEntry {
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

// seedHistory creates four entries across two weeks:
//
//	#1 Review (acme)        Fri Mar 7  14:00-15:30
//	#2 Standup              Mon Mar 10 09:00-09:15
//	#3 Write report (acme)  Mon Mar 10 09:30-running
//	#4 Email [logged]       Sun Mar 9  16:00-16:45
func (f *cliFixture) seedHistory(t *testing.T) {
	t.Helper()
	f.seed(t, "Review", strPtr("acme"), at(time.March, 7, 14, 0), timePtr(at(time.March, 7, 15, 30)))
	f.seed(t, "Standup", nil, at(time.March, 10, 9, 0), timePtr(at(time.March, 10, 9, 15)))
	f.seed(t, "Write report", strPtr("acme"), at(time.March, 10, 9, 30), nil)
	email := f.seed(t, "Email", nil, at(time.March, 9, 16, 0), timePtr(at(time.March, 9, 16, 45)))

	logged := true
	_, err := f.repo.UpdateEntry(context.Background(), email.ID, domain.EntryPatch{Logged: &logged})
	require.NoError(t, err)
}

func (f *cliFixture) get(t *testing.T, id int64) *domain.TimeEntry {
	t.Helper()
	entry, err := f.repo.GetEntry(context.Background(), id)
	require.NoError(t, err)
	return entry
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
