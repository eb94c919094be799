package cli

import (
	"context"

	"chronii/internal/errors"
)

// defaultSummaryPeriod is used when summary is called without a period
const defaultSummaryPeriod = "1w"

// SummaryCommand reports totals per project over a period
type SummaryCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the summary command
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	period := defaultSummaryPeriod
	switch len(args) {
	case 0:
	case 1:
		period = args[0]
	default:
		return errors.NewInvalidInputError("command", "summary", "usage: chronii summary [period]")
	}

	tr, err := c.app.services.ReportingService.ParseTimeRange(period)
	if err != nil {
		return c.errorHandler.Handle("parse period", err)
	}
	report, err := c.app.services.ReportingService.Range(ctx, tr.Start, tr.End)
	if err != nil {
		return c.errorHandler.Handle("build summary", err)
	}
	c.app.printf("%s", c.app.renderer.Report(report))
	return nil
}
