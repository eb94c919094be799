package cli

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"chronii/internal/domain"
	"chronii/internal/errors"
)

// EditCommand handles the edit command. Only flags that were passed change
// the entry; the patch is applied all-or-nothing.
type EditCommand struct {
	app          *App
	errorHandler *ErrorHandler
	flags        *pflag.FlagSet

	Task      string
	Project   string
	NoProject bool
	Start     string
	End       string
	Reopen    bool
	Logged    bool
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the edit flags
func (c *EditCommand) BindFlags(flags *pflag.FlagSet) {
	c.flags = flags
	flags.StringVarP(&c.Task, "task", "t", "", "New task name")
	flags.StringVarP(&c.Project, "project", "p", "", "New project")
	flags.BoolVar(&c.NoProject, "no-project", false, "Remove the project")
	flags.StringVarP(&c.Start, "start", "s", "", "New start time (\"15:04\", \"2006-01-02 15:04\", \"yesterday 9am\")")
	flags.StringVarP(&c.End, "end", "e", "", "New end time")
	flags.BoolVar(&c.Reopen, "reopen", false, "Clear the end time so the entry runs again")
	flags.BoolVar(&c.Logged, "logged", false, "Set the logged flag (--logged=false clears it)")
}

// Execute runs the edit command
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "edit", "usage: chronii edit <id> [--task name] [--project name] [--start time] [--end time]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	patch, err := c.buildPatch(c.app.now())
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.NewInvalidInputError("command", "edit", "nothing to change, pass at least one flag")
	}

	updated, err := c.app.services.EntryService.Edit(ctx, id, patch)
	if err != nil {
		return c.errorHandler.Handle("edit entry", err)
	}
	c.app.printf("Updated: %s\n", c.app.renderer.EntrySummary(*updated, c.app.now()))
	return nil
}

func (c *EditCommand) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

func (c *EditCommand) buildPatch(now time.Time) (domain.EntryPatch, error) {
	var patch domain.EntryPatch

	if c.changed("task") {
		patch.TaskName = &c.Task
	}

	switch {
	case c.changed("project") && c.NoProject:
		return patch, errors.NewInvalidInputError("project", c.Project, "--project and --no-project cannot be combined")
	case c.changed("project"):
		patch.Project = domain.Set(c.Project)
	case c.NoProject:
		patch.Project = domain.Clear[string]()
	}

	if c.changed("start") {
		start, err := parseWhen(c.Start, now)
		if err != nil {
			return patch, err
		}
		patch.StartTime = &start
	}

	switch {
	case c.changed("end") && c.Reopen:
		return patch, errors.NewInvalidInputError("end", c.End, "--end and --reopen cannot be combined")
	case c.changed("end"):
		end, err := parseWhen(c.End, now)
		if err != nil {
			return patch, err
		}
		patch.EndTime = domain.Set(end)
	case c.Reopen:
		patch.EndTime = domain.Clear[time.Time]()
	}

	if c.changed("logged") {
		patch.Logged = &c.Logged
	}
	return patch, nil
}
