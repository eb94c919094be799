package cli

import (
	"context"

	"github.com/spf13/pflag"

	"chronii/internal/errors"
)

// LogCommand marks entries as logged to an external timesheet
type LogCommand struct {
	app *App

	Undo bool
}

// NewLogCommand creates a new log command handler
func NewLogCommand(app *App) *LogCommand {
	return &LogCommand{app: app}
}

// BindFlags registers the log flags
func (c *LogCommand) BindFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&c.Undo, "undo", "u", false, "Clear the logged flag instead of setting it")
}

// Execute runs the log command
func (c *LogCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "log", "usage: chronii log <id>... [--undo]")
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	verb := "Logged"
	if c.Undo {
		verb = "Unlogged"
	}
	result := c.app.services.EntryService.SetLoggedMany(ctx, ids, !c.Undo)
	return reportBatch(c.app, verb, result)
}
