package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/validation"
)

func TestEntryService_Start(t *testing.T) {
	tests := []struct {
		name            string
		taskName        string
		project         *string
		expectedName    string
		expectedProject *string
		errorAssertion  func(t *testing.T, err error)
	}{
		{
			name:         "should start entry with valid name",
			taskName:     "Write report",
			expectedName: "Write report",
		},
		{
			name:            "should trim task and project names",
			taskName:        "  Write report  ",
			project:         strPtr("  acme "),
			expectedName:    "Write report",
			expectedProject: strPtr("acme"),
		},
		{
			name:         "should treat blank project as no project",
			taskName:     "Write report",
			project:      strPtr("   "),
			expectedName: "Write report",
		},
		{
			name:     "should return validation error for empty name",
			taskName: "   ",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
				assert.Contains(t, err.Error(), "task_name")
			},
		},
		{
			name:     "should return validation error for control characters",
			taskName: "bad\x00name",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := setupServices(t)
			ctx := context.Background()

			// Act
			result, err := f.entries.Start(ctx, tt.taskName, tt.project)

			// Assert
			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				assert.Nil(t, result)
				assert.Empty(t, f.openEntries(t))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedName, result.Entry.TaskName)
			assert.Equal(t, tt.expectedProject, result.Entry.Project)
			assert.True(t, result.Entry.IsOpen())
			assert.True(t, baseTime.Equal(result.Entry.StartTime))
			assert.Empty(t, result.Stopped)
		})
	}
}

func TestEntryService_Start_SubstitutesUntitled(t *testing.T) {
	rules := validation.DefaultRules()
	rules.SubstituteUntitled = true
	f := setupServicesWithRules(t, rules)

	result, err := f.entries.Start(context.Background(), "  ", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.UntitledTaskName, result.Entry.TaskName)
	assert.True(t, result.Entry.IsUntitled())
}

func TestEntryService_Start_StopsRunningEntry(t *testing.T) {
	// Arrange
	f := setupServices(t)
	ctx := context.Background()
	first, err := f.entries.Start(ctx, "B", nil)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	// Act
	second, err := f.entries.Start(ctx, "X", nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, second.Stopped, 1)
	assert.Equal(t, first.Entry.ID, second.Stopped[0].ID)
	require.NotNil(t, second.Stopped[0].EndTime)
	assert.True(t, f.clock.Now().Equal(*second.Stopped[0].EndTime))

	open := f.openEntries(t)
	require.Len(t, open, 1)
	assert.Equal(t, second.Entry.ID, open[0].ID)
	assert.Equal(t, "X", open[0].TaskName)
}

func TestEntryService_Start_AtMostOneOpen(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	// Two entries left open by reopening edits.
	a := f.seed(t, "a", at(8, 0), timePtr(at(8, 30)), nil)
	b := f.seed(t, "b", at(9, 0), timePtr(at(9, 30)), nil)
	_, err := f.entries.Edit(ctx, a.ID, domain.EntryPatch{EndTime: domain.Clear[time.Time]()})
	require.NoError(t, err)
	_, err = f.entries.Edit(ctx, b.ID, domain.EntryPatch{EndTime: domain.Clear[time.Time]()})
	require.NoError(t, err)
	require.Len(t, f.openEntries(t), 2)

	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Minute)
		result, err := f.entries.Start(ctx, "task", nil)
		require.NoError(t, err)

		open := f.openEntries(t)
		require.Len(t, open, 1)
		assert.Equal(t, result.Entry.ID, open[0].ID)
	}
}

func TestEntryService_Start_StopsFutureEntryAtItsStart(t *testing.T) {
	f := setupServices(t)
	future := f.seed(t, "future", baseTime.Add(time.Hour), nil, nil)

	result, err := f.entries.Start(context.Background(), "now", nil)

	require.NoError(t, err)
	require.Len(t, result.Stopped, 1)
	assert.Equal(t, future.ID, result.Stopped[0].ID)
	assert.True(t, result.Stopped[0].EndTime.Equal(future.StartTime))
}

func TestEntryService_Stop(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T, f *fixture) int64
		alreadyStopped bool
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name: "should stop running entry at now",
			setup: func(t *testing.T, f *fixture) int64 {
				return f.seed(t, "running", at(9, 0), nil, nil).ID
			},
		},
		{
			name: "should report already stopped entry",
			setup: func(t *testing.T, f *fixture) int64 {
				return f.seed(t, "done", at(8, 0), timePtr(at(9, 0)), nil).ID
			},
			alreadyStopped: true,
		},
		{
			name:  "should return not found error for non-existent entry",
			setup: func(t *testing.T, f *fixture) int64 { return 999 },
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsNotFound(err))
			},
		},
		{
			name:  "should return validation error for invalid ID",
			setup: func(t *testing.T, f *fixture) int64 { return 0 },
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := setupServices(t)
			id := tt.setup(t, f)

			// Act
			result, err := f.entries.Stop(context.Background(), id)

			// Assert
			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.alreadyStopped, result.AlreadyStopped)
			require.NotNil(t, result.Entry.EndTime)
			if tt.alreadyStopped {
				assert.True(t, at(9, 0).Equal(*result.Entry.EndTime))
			} else {
				assert.True(t, baseTime.Equal(*result.Entry.EndTime))
				assert.Equal(t, time.Hour, result.Entry.Duration(baseTime))
			}
		})
	}
}

func TestEntryService_StopActive(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	stopped, err := f.entries.StopActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, stopped)

	running := f.seed(t, "running", at(9, 0), nil, nil)
	stopped, err = f.entries.StopActive(ctx)
	require.NoError(t, err)
	require.Len(t, stopped, 1)
	assert.Equal(t, running.ID, stopped[0].ID)
	assert.Empty(t, f.openEntries(t))
}

func TestEntryService_Edit(t *testing.T) {
	tests := []struct {
		name           string
		patch          domain.EntryPatch
		assertEntry    func(t *testing.T, e *domain.TimeEntry)
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:  "should rename task",
			patch: domain.EntryPatch{TaskName: strPtr("  renamed ")},
			assertEntry: func(t *testing.T, e *domain.TimeEntry) {
				assert.Equal(t, "renamed", e.TaskName)
				assert.True(t, e.IsOpen())
			},
		},
		{
			name:  "should set and normalize project",
			patch: domain.EntryPatch{Project: domain.Set(" acme ")},
			assertEntry: func(t *testing.T, e *domain.TimeEntry) {
				assert.Equal(t, "acme", e.ProjectName())
			},
		},
		{
			name:  "should close entry with valid end time",
			patch: domain.EntryPatch{EndTime: domain.Set(at(10, 45))},
			assertEntry: func(t *testing.T, e *domain.TimeEntry) {
				require.NotNil(t, e.EndTime)
				assert.True(t, at(10, 45).Equal(*e.EndTime))
			},
		},
		{
			name:  "should allow zero-length interval",
			patch: domain.EntryPatch{EndTime: domain.Set(at(10, 0))},
			assertEntry: func(t *testing.T, e *domain.TimeEntry) {
				assert.Zero(t, e.Duration(baseTime))
			},
		},
		{
			name:  "should reject end time before start time",
			patch: domain.EntryPatch{EndTime: domain.Set(at(9, 30))},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
				assert.Contains(t, err.Error(), "time_range")
			},
		},
		{
			name:  "should reject start moved past existing end",
			patch: domain.EntryPatch{StartTime: timePtr(at(12, 0)), EndTime: domain.Set(at(11, 0))},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
			},
		},
		{
			name:  "should reject empty task name without applying other fields",
			patch: domain.EntryPatch{TaskName: strPtr(" "), Project: domain.Set("acme")},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := setupServices(t)
			ctx := context.Background()
			b := f.seed(t, "B", at(10, 0), nil, nil)

			// Act
			updated, err := f.entries.Edit(ctx, b.ID, tt.patch)

			// Assert
			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				assert.Nil(t, updated)

				stored, getErr := f.entries.Get(ctx, b.ID)
				require.NoError(t, getErr)
				assert.Equal(t, b, *stored)
				return
			}
			require.NoError(t, err)
			tt.assertEntry(t, updated)
		})
	}
}

func TestEntryService_Edit_ReopenDoesNotStopOthers(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	running := f.seed(t, "running", at(9, 30), nil, nil)
	closed := f.seed(t, "closed", at(8, 0), timePtr(at(9, 0)), nil)

	reopened, err := f.entries.Edit(ctx, closed.ID, domain.EntryPatch{EndTime: domain.Clear[time.Time]()})

	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())
	assert.Len(t, f.openEntries(t), 2)
	stillRunning, err := f.entries.Get(ctx, running.ID)
	require.NoError(t, err)
	assert.True(t, stillRunning.IsOpen())
}

func TestEntryService_Edit_EmptyPatchAndMissing(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	e := f.seed(t, "task", at(9, 0), nil, nil)

	same, err := f.entries.Edit(ctx, e.ID, domain.EntryPatch{})
	require.NoError(t, err)
	assert.Equal(t, e, *same)

	_, err = f.entries.Edit(ctx, 999, domain.EntryPatch{TaskName: strPtr("x")})
	assert.True(t, errors.IsNotFound(err))
}

func TestEntryService_Delete(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	running := f.seed(t, "running", at(9, 0), nil, nil)

	require.NoError(t, f.entries.Delete(ctx, running.ID))

	_, err := f.entries.Get(ctx, running.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, f.openEntries(t))

	err = f.entries.Delete(ctx, running.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestEntryService_DeleteMany_ReportsPartialFailure(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	a := f.seed(t, "a", at(8, 0), timePtr(at(9, 0)), nil)
	b := f.seed(t, "b", at(9, 0), nil, nil)

	result := f.entries.DeleteMany(ctx, []int64{a.ID, 999, b.ID})

	assert.False(t, result.OK())
	assert.Equal(t, []int64{a.ID, b.ID}, result.Succeeded())
	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(999), failed[0].ID)
	assert.True(t, errors.IsNotFound(failed[0].Err))

	remaining, err := f.entries.List(ctx, ListOptions{Filter: domain.AllProjects()})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEntryService_SetLoggedMany(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	a := f.seed(t, "a", at(8, 0), timePtr(at(9, 0)), nil)
	b := f.seed(t, "b", at(9, 0), timePtr(at(9, 30)), nil)

	result := f.entries.SetLoggedMany(ctx, []int64{a.ID, b.ID, -1}, true)

	assert.Equal(t, []int64{a.ID, b.ID}, result.Succeeded())
	require.Len(t, result.Failed(), 1)
	assert.True(t, errors.IsValidation(result.Failed()[0].Err))

	for _, id := range []int64{a.ID, b.ID} {
		e, err := f.entries.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, e.Logged)
	}

	result = f.entries.SetLoggedMany(ctx, []int64{a.ID}, false)
	assert.True(t, result.OK())
	e, err := f.entries.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, e.Logged)
}

func TestEntryService_Resume(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	old := f.seed(t, "Review", at(8, 0), timePtr(at(9, 0)), strPtr("acme"))

	result, err := f.entries.Resume(ctx, old.ID)

	require.NoError(t, err)
	assert.NotEqual(t, old.ID, result.Entry.ID)
	assert.Equal(t, "Review", result.Entry.TaskName)
	assert.Equal(t, "acme", result.Entry.ProjectName())
	assert.True(t, result.Entry.IsOpen())

	_, err = f.entries.Resume(ctx, 999)
	assert.True(t, errors.IsNotFound(err))
}

func TestEntryService_ListAndActive(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	f.seed(t, "a", at(7, 0), timePtr(at(8, 0)), strPtr("acme"))
	f.seed(t, "b", at(8, 0), timePtr(at(9, 0)), nil)
	c := f.seed(t, "c", at(9, 0), nil, strPtr("acme"))

	all, err := f.entries.List(ctx, ListOptions{Filter: domain.AllProjects()})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, c.ID, all[0].ID)

	acme, err := f.entries.List(ctx, ListOptions{Filter: domain.NamedProject(" acme ")})
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	none, err := f.entries.List(ctx, ListOptions{Filter: domain.NoProject()})
	require.NoError(t, err)
	assert.Len(t, none, 1)

	page, err := f.entries.List(ctx, ListOptions{Limit: 1, Offset: 1, Filter: domain.AllProjects()})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].TaskName)

	_, err = f.entries.List(ctx, ListOptions{Limit: -1})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	active, err := f.entries.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, c.ID, active.ID)
}
