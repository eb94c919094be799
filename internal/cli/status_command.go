package cli

import (
	"context"
)

// StatusCommand shows the running entry and the period totals
type StatusCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	summary, err := c.app.services.ReportingService.Summary(ctx)
	if err != nil {
		return c.errorHandler.Handle("load status", err)
	}
	c.app.printf("%s", c.app.renderer.Status(*summary))
	return nil
}
