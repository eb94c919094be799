package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"chronii/internal/api"
	"chronii/internal/logging"
)

// WatchCommand runs the live, self-updating history view
type WatchCommand struct {
	app          *App
	errorHandler *ErrorHandler

	Project   string
	NoProject bool
	NoAlt     bool
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the watch flags
func (c *WatchCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Project, "project", "p", "", "Start filtered to this project")
	flags.BoolVar(&c.NoProject, "no-project", false, "Start filtered to entries without a project")
	flags.BoolVar(&c.NoAlt, "inline", false, "Render inline instead of on the alternate screen")
}

// Execute runs the watch command until the user quits or ctx ends
func (c *WatchCommand) Execute(ctx context.Context, args []string) error {
	filter, err := projectFilter(c.Project, c.NoProject, c.app.config.History.Project)
	if err != nil {
		return err
	}

	tracker := api.NewTracker(c.app.services, api.Options{
		Clock:        c.app.clock,
		TickInterval: c.app.config.Clock.TickInterval,
		Limit:        c.app.config.History.PageSize,
		Filter:       filter,
	})
	defer tracker.Close()

	if err := tracker.Reload(ctx); err != nil {
		return c.errorHandler.Handle("load history", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := tracker.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Logger().Error("live clock stopped", "error", err)
		}
	}()

	model := newWatchModel(ctx, tracker, c.app.renderer, c.app.services.ProjectService)
	defer model.close()

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.app.in),
		tea.WithOutput(c.app.out),
	}
	if !c.NoAlt {
		opts = append(opts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
