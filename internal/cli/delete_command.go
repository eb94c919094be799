package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/services"
)

// pickLimit caps how many recent entries an interactive prompt offers
const pickLimit = 10

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute deletes the given entries, or prompts for one when no id is given
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.deleteInteractive(ctx)
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 1 {
		if err := c.app.services.EntryService.Delete(ctx, ids[0]); err != nil {
			return c.errorHandler.Handle("delete entry", err)
		}
		c.app.printf("Deleted entry #%d\n", ids[0])
		return nil
	}

	result := c.app.services.EntryService.DeleteMany(ctx, ids)
	return reportBatch(c.app, "Deleted", result)
}

func (c *DeleteCommand) deleteInteractive(ctx context.Context) error {
	entries, err := c.app.services.EntryService.List(ctx, services.ListOptions{Limit: pickLimit, Filter: domain.AllProjects()})
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}
	if len(entries) == 0 {
		c.app.println("No entries found to delete.")
		return nil
	}

	c.app.println("Select an entry to delete:")
	entry, ok, err := pickEntry(c.app, entries, "delete")
	if err != nil || !ok {
		return err
	}

	if err := c.app.services.EntryService.Delete(ctx, entry.ID); err != nil {
		return c.errorHandler.Handle("delete entry", err)
	}
	c.app.printf("Deleted: %s\n", c.app.renderer.EntrySummary(entry, c.app.now()))
	return nil
}

// pickEntry lists entries and reads a 1-based choice from the app input.
// It returns ok=false when the user quits.
func pickEntry(app *App, entries []domain.TimeEntry, verb string) (domain.TimeEntry, bool, error) {
	now := app.now()
	for i, e := range entries {
		app.printf("%d. %s\n", i+1, app.renderer.EntrySummary(e, now))
	}
	app.printf("Enter number to %s, or 'q' to quit: ", verb)

	var input string
	fmt.Fscanln(app.in, &input)
	input = strings.TrimSpace(input)
	if input == "q" || input == "Q" {
		app.printf("%s cancelled.\n", strings.ToUpper(verb[:1])+verb[1:])
		return domain.TimeEntry{}, false, nil
	}

	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(entries) {
		return domain.TimeEntry{}, false, errors.NewInvalidInputError("selection", input, "invalid selection")
	}
	return entries[idx-1], true, nil
}

// reportBatch prints per-id outcomes and fails when any item failed
func reportBatch(app *App, verb string, result services.BatchResult) error {
	for _, item := range result.Items {
		if item.Err != nil {
			app.printf("#%d: %s\n", item.ID, errors.GetUserMessage(item.Err))
			continue
		}
		app.printf("%s entry #%d\n", verb, item.ID)
	}
	if failed := result.Failed(); len(failed) > 0 {
		return errors.NewInvalidInputError("ids", len(failed), fmt.Sprintf("%d of %d entries failed", len(failed), len(result.Items)))
	}
	return nil
}
