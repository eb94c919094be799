package cli

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"chronii/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	errorHandler *ErrorHandler

	Project string
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the start flags
func (c *StartCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Project, "project", "p", "", "Project for the new entry")
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "start", "usage: chronii start \"task name\" [--project name]")
	}
	return c.startEntry(ctx, strings.Join(args, " "))
}

func (c *StartCommand) startEntry(ctx context.Context, taskName string) error {
	var project *string
	if c.Project != "" {
		project = &c.Project
	}

	result, err := c.app.services.EntryService.Start(ctx, taskName, project)
	if err != nil {
		return c.errorHandler.Handle("start entry", err)
	}

	for _, stopped := range result.Stopped {
		c.app.printf("Stopped: %s\n", c.app.renderer.EntrySummary(stopped, c.app.now()))
	}
	c.app.printf("Started: %s%s at %s\n",
		result.Entry.TaskName,
		c.app.renderer.ProjectSuffix(result.Entry.Project),
		c.app.renderer.Clock(result.Entry.StartTime))
	return nil
}
