package cli

import (
	"context"

	"chronii/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute stops the given entry, or everything running when no id is given
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		return c.stopActive(ctx)
	case 1:
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return c.stopEntry(ctx, id)
	default:
		return errors.NewInvalidInputError("command", "stop", "usage: chronii stop [id]")
	}
}

func (c *StopCommand) stopActive(ctx context.Context) error {
	stopped, err := c.app.services.EntryService.StopActive(ctx)
	if err != nil {
		return c.errorHandler.Handle("stop entries", err)
	}
	if len(stopped) == 0 {
		c.app.println("No entry is running")
		return nil
	}
	for _, entry := range stopped {
		c.app.printf("Stopped: %s\n", c.app.renderer.EntrySummary(entry, c.app.now()))
	}
	return nil
}

func (c *StopCommand) stopEntry(ctx context.Context, id int64) error {
	result, err := c.app.services.EntryService.Stop(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("stop entry", err)
	}
	if result.AlreadyStopped {
		c.app.printf("Entry #%d is not running\n", id)
		return nil
	}
	c.app.printf("Stopped: %s\n", c.app.renderer.EntrySummary(result.Entry, c.app.now()))
	return nil
}
