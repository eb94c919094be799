package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronii/internal/api"
	"chronii/internal/config"
	"chronii/internal/services"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setupWatch(t *testing.T) (*cliFixture, *api.Tracker, *watchModel) {
	t.Helper()
	f := setupCLI(t)
	f.seedHistory(t)

	container := services.NewServiceContainer(f.repo, f.clock, nil)
	tracker := api.NewTracker(container, api.Options{Clock: f.clock})
	t.Cleanup(tracker.Close)
	require.NoError(t, tracker.Reload(context.Background()))

	renderer := NewRenderer(config.DisplayConfig{TimeFormat: "15:04", RunningStatus: "running"})
	m := newWatchModel(context.Background(), tracker, renderer, container.ProjectService)
	t.Cleanup(m.close)
	return f, tracker, m
}

// press sends a key and runs the command it returns, feeding the result back
func press(t *testing.T, m *watchModel, s string) {
	t.Helper()
	_, cmd := m.Update(keyMsg(s))
	if cmd == nil {
		return
	}
	m.Update(cmd())
}

func TestWatchModel_View(t *testing.T) {
	// Arrange
	_, _, m := setupWatch(t)

	// Act
	view := m.View()

	// Assert
	assert.Contains(t, view, "live")
	assert.Contains(t, view, "  >  #3  09:30 – running  30m 0s  Write report (acme)\n")
	assert.Contains(t, view, "     #2  09:00 – 09:15  15m 0s  Standup\n")
	assert.Contains(t, view, "Total  3h 0m\n")
}

func TestWatchModel_SelectionAndBatch(t *testing.T) {
	// Arrange
	f, tracker, m := setupWatch(t)

	// Act
	press(t, m, "x")
	press(t, m, "j")
	press(t, m, "x")
	selectedView := m.View()
	press(t, m, "l")

	// Assert
	assert.Contains(t, selectedView, "   * #3")
	assert.Contains(t, selectedView, "  >* #2")
	assert.Contains(t, selectedView, "2 entries selected · 45m\n")
	assert.Contains(t, m.View(), "Logged 2 entries\n")
	assert.True(t, f.get(t, 2).Logged)
	assert.True(t, f.get(t, 3).Logged)
	assert.Empty(t, tracker.SelectedEntries())
}

func TestWatchModel_DeleteAsksFirst(t *testing.T) {
	tests := []struct {
		name            string
		answer          string
		expectedStatus  string
		expectedDeleted bool
	}{
		{
			name:            "should delete the selection on yes",
			answer:          "y",
			expectedStatus:  "Deleted 2 entries\n",
			expectedDeleted: true,
		},
		{
			name:           "should keep entries and clear the selection on no",
			answer:         "n",
			expectedStatus: "Delete cancelled\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f, tracker, m := setupWatch(t)
			press(t, m, "x")
			press(t, m, "j")
			press(t, m, "x")

			// Act
			press(t, m, "d")
			prompt := m.View()
			press(t, m, "j")
			pending := f.get(t, 2)
			press(t, m, tt.answer)

			// Assert
			assert.Contains(t, prompt, "Delete 2 entries? y/n\n")
			assert.NotNil(t, pending, "nothing is deleted before the answer")
			assert.Contains(t, m.View(), tt.expectedStatus)
			assert.Empty(t, tracker.SelectedEntries())
			if tt.expectedDeleted {
				assert.Nil(t, f.get(t, 2))
				assert.Nil(t, f.get(t, 3))
			} else {
				assert.NotNil(t, f.get(t, 2))
				assert.NotNil(t, f.get(t, 3))
			}
		})
	}
}

func TestWatchModel_DeleteCancelledWithEscape(t *testing.T) {
	// Arrange
	f, tracker, m := setupWatch(t)
	press(t, m, "x")
	press(t, m, "d")

	// Act
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	// Assert
	assert.Contains(t, m.View(), "Delete cancelled\n")
	assert.Empty(t, tracker.SelectedEntries())
	assert.NotNil(t, f.get(t, 3))
}

func TestWatchModel_BatchNeedsSelection(t *testing.T) {
	f, _, m := setupWatch(t)

	press(t, m, "d")

	assert.Contains(t, m.View(), "Select entries first\n")
	assert.NotNil(t, f.get(t, 3))
}

func TestWatchModel_StartStop(t *testing.T) {
	f, _, m := setupWatch(t)

	press(t, m, "s")
	assert.Contains(t, m.View(), "Stopped #3\n")
	assert.False(t, f.get(t, 3).IsOpen())

	press(t, m, "j")
	press(t, m, "s")
	assert.Contains(t, m.View(), "Resumed Standup as #5\n")
	assert.True(t, f.get(t, 5).IsOpen())
}

func TestWatchModel_FollowsSnapshots(t *testing.T) {
	// Arrange
	_, tracker, m := setupWatch(t)
	m.Update(m.waitForSnapshot()())

	// Act
	_, err := tracker.Start(context.Background(), "Planning", nil)
	require.NoError(t, err)
	_, cmd := m.Update(m.waitForSnapshot()())

	// Assert
	assert.NotNil(t, cmd, "keeps listening")
	assert.Contains(t, m.View(), "Planning")
	assert.Contains(t, m.View(), "09:30 – 10:00")
}

func TestWatchModel_CyclesProjectFilter(t *testing.T) {
	_, tracker, m := setupWatch(t)
	m.Update(m.loadProjects()())

	press(t, m, "p")
	view := m.View()
	assert.NotContains(t, view, "Write report")
	assert.Contains(t, view, "Standup")

	press(t, m, "p")
	view = m.View()
	assert.Contains(t, view, "Write report")
	assert.NotContains(t, view, "Standup")
	assert.Equal(t, "acme", tracker.Snapshot().Filter.Name)
}

func TestWatchModel_Quit(t *testing.T) {
	_, _, m := setupWatch(t)

	_, cmd := m.Update(keyMsg("q"))

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
