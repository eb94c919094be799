package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"chronii/internal/aggregation"
	"chronii/internal/api"
	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/services"
)

type watchKeys struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Clear       key.Binding
	StartStop   key.Binding
	StopAll     key.Binding
	Delete      key.Binding
	Logged      key.Binding
	Unlogged    key.Binding
	NextProject key.Binding
	Reload      key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

func defaultWatchKeys() watchKeys {
	return watchKeys{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		Clear:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		StartStop:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("s", "stop/resume")),
		StopAll:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "stop running")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		Logged:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "mark logged")),
		Unlogged:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "mark unlogged")),
		NextProject: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next project")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Confirm:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.StartStop, k.Delete, k.Logged, k.NextProject, k.Quit}
}

// FullHelp implements help.KeyMap
func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Clear},
		{k.StartStop, k.StopAll, k.Delete, k.Logged, k.Unlogged},
		{k.NextProject, k.Reload, k.Quit},
	}
}

type snapshotMsg api.Snapshot

type projectsMsg struct {
	names []string
	err   error
}

// resultMsg reports the outcome of a mutation run off the UI loop
type resultMsg struct {
	status string
	err    error
}

// watchModel is the bubbletea model of the live view. State arrives as
// tracker snapshots; keys turn into tracker intents.
type watchModel struct {
	ctx         context.Context
	tracker     *api.Tracker
	renderer    *Renderer
	projectsSvc services.ProjectService

	snapshots   <-chan api.Snapshot
	unsubscribe func()

	snap     api.Snapshot
	cursor   int
	filters  []domain.ProjectFilter
	filterAt int
	status   string
	err      error
	// confirmDelete is set while a delete of the selection awaits y or n.
	confirmDelete bool

	keys watchKeys
	help help.Model
}

func newWatchModel(ctx context.Context, tracker *api.Tracker, renderer *Renderer, projects services.ProjectService) *watchModel {
	ch, unsubscribe := tracker.Subscribe()
	m := &watchModel{
		ctx:         ctx,
		tracker:     tracker,
		renderer:    renderer,
		projectsSvc: projects,
		snapshots:   ch,
		unsubscribe: unsubscribe,
		snap:        tracker.Snapshot(),
		keys:        defaultWatchKeys(),
		help:        help.New(),
	}
	m.filters = []domain.ProjectFilter{domain.AllProjects(), domain.NoProject()}
	m.filterAt = m.indexOfFilter(m.snap.Filter)
	return m
}

func (m *watchModel) close() {
	m.unsubscribe()
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.loadProjects())
}

func (m *watchModel) waitForSnapshot() tea.Cmd {
	ch := m.snapshots
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m *watchModel) loadProjects() tea.Cmd {
	if m.projectsSvc == nil {
		return nil
	}
	return func() tea.Msg {
		projects, err := m.projectsSvc.List(m.ctx)
		names := make([]string, 0, len(projects))
		for _, p := range projects {
			names = append(names, p.Name)
		}
		return projectsMsg{names: names, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = api.Snapshot(msg)
		m.clampCursor()
		return m, m.waitForSnapshot()

	case projectsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		current := m.snap.Filter
		m.filters = []domain.ProjectFilter{domain.AllProjects(), domain.NoProject()}
		for _, name := range msg.names {
			m.filters = append(m.filters, domain.NamedProject(name))
		}
		m.filterAt = m.indexOfFilter(current)
		return m, nil

	case resultMsg:
		m.status, m.err = msg.status, msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete {
		return m.handleConfirm(msg)
	}
	entries := m.snap.View.Entries()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if e, ok := m.current(entries); ok {
			m.tracker.ToggleSelection(e.ID)
			m.snap = m.tracker.Snapshot()
		}
	case key.Matches(msg, m.keys.Clear):
		m.tracker.ClearSelection()
		m.snap = m.tracker.Snapshot()
	case key.Matches(msg, m.keys.NextProject):
		m.filterAt = (m.filterAt + 1) % len(m.filters)
		m.tracker.SetProjectFilter(m.filters[m.filterAt])
		m.snap = m.tracker.Snapshot()
		m.cursor = 0
	case key.Matches(msg, m.keys.StartStop):
		if e, ok := m.current(entries); ok {
			return m, m.startStop(e)
		}
	case key.Matches(msg, m.keys.StopAll):
		return m, m.stopAll()
	case key.Matches(msg, m.keys.Delete):
		if len(m.snap.Selected) == 0 {
			m.status, m.err = "Select entries first", nil
			return m, nil
		}
		m.confirmDelete = true
		m.status, m.err = fmt.Sprintf("Delete %s? y/n", entryCount(len(m.snap.Selected))), nil
	case key.Matches(msg, m.keys.Logged):
		return m, m.batch("Logged", func(ctx context.Context) (services.BatchResult, error) {
			return m.tracker.SetSelectedLogged(ctx, true)
		})
	case key.Matches(msg, m.keys.Unlogged):
		return m, m.batch("Unlogged", func(ctx context.Context) (services.BatchResult, error) {
			return m.tracker.SetSelectedLogged(ctx, false)
		})
	case key.Matches(msg, m.keys.Reload):
		return m, func() tea.Msg {
			return resultMsg{status: "Reloaded", err: m.tracker.Reload(m.ctx)}
		}
	}
	return m, nil
}

// handleConfirm answers a pending delete. Declining counts as an explicit
// cancel and clears the selection.
func (m *watchModel) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirmDelete = false
		m.status = ""
		return m, m.batch("Deleted", m.tracker.DeleteSelected)
	case key.Matches(msg, m.keys.Cancel):
		m.confirmDelete = false
		m.tracker.ClearSelection()
		m.snap = m.tracker.Snapshot()
		m.status = "Delete cancelled"
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m *watchModel) current(entries []domain.TimeEntry) (domain.TimeEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(entries) {
		return domain.TimeEntry{}, false
	}
	return entries[m.cursor], true
}

func (m *watchModel) clampCursor() {
	n := m.snap.View.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *watchModel) indexOfFilter(f domain.ProjectFilter) int {
	for i, candidate := range m.filters {
		if candidate == f {
			return i
		}
	}
	m.filters = append(m.filters, f)
	return len(m.filters) - 1
}

func (m *watchModel) startStop(e domain.TimeEntry) tea.Cmd {
	return func() tea.Msg {
		if e.IsOpen() {
			if _, err := m.tracker.Stop(m.ctx, e.ID); err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: fmt.Sprintf("Stopped #%d", e.ID)}
		}
		result, err := m.tracker.Resume(m.ctx, e.ID)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("Resumed %s as #%d", result.Entry.TaskName, result.Entry.ID)}
	}
}

func (m *watchModel) stopAll() tea.Cmd {
	return func() tea.Msg {
		stopped, err := m.tracker.StopActive(m.ctx)
		if err != nil {
			return resultMsg{err: err}
		}
		if len(stopped) == 0 {
			return resultMsg{status: "Nothing running"}
		}
		return resultMsg{status: fmt.Sprintf("Stopped %s", entryCount(len(stopped)))}
	}
}

func (m *watchModel) batch(verb string, run func(ctx context.Context) (services.BatchResult, error)) tea.Cmd {
	if len(m.snap.Selected) == 0 {
		m.status, m.err = "Select entries first", nil
		return nil
	}
	return func() tea.Msg {
		result, err := run(m.ctx)
		if err != nil {
			return resultMsg{err: err}
		}
		status := fmt.Sprintf("%s %s", verb, entryCount(len(result.Succeeded())))
		if failed := result.Failed(); len(failed) > 0 {
			status += fmt.Sprintf(", %d failed", len(failed))
		}
		return resultMsg{status: status}
	}
}

func (m *watchModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("chronii · %s", m.snap.Filter)
	if m.snap.Ticking {
		header += " · " + m.renderer.paint(runningStyle, "live")
	}
	b.WriteString(m.renderer.paint(boxStyle, header) + "\n\n")

	entries := m.snap.View.Entries()
	var cursorID int64 = -1
	if e, ok := m.current(entries); ok {
		cursorID = e.ID
	}
	selected := make(map[int64]bool, len(m.snap.Selected))
	for _, e := range m.snap.Selected {
		selected[e.ID] = true
	}

	b.WriteString(m.renderer.History(m.snap.View, HistoryOptions{
		Marker: func(e domain.TimeEntry) string {
			cur, sel := " ", " "
			if e.ID == cursorID {
				cur = ">"
			}
			if selected[e.ID] {
				sel = m.renderer.paint(selectedStyle, "*")
			}
			return "  " + cur + sel + " "
		},
	}))

	if len(m.snap.Selected) > 0 {
		fmt.Fprintf(&b, "\n%s selected · %s\n", entryCount(len(m.snap.Selected)), aggregation.FormatTotal(m.snap.SelectedTotal))
	}
	if m.err != nil {
		b.WriteString("\n" + m.renderer.paint(errorStyle, errors.GetUserMessage(m.err)) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString(m.renderer.paint(helpStyle, m.help.View(m.keys)) + "\n")
	return b.String()
}
